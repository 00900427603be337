// Package state persists the status of a receive group as a JSON file.
//
// The status carries the receiver ID, the ports it bound (including
// OS-assigned ones), the received count and the stop/reconstruction flags,
// so other processes can discover scrambled ports or watch progress.
//
//	repo := state.NewFileRepository("/var/run/vcshare/status.json")
//	if err := repo.Save(ctx, status); err != nil {
//	    return err
//	}
//
// Writes go to a temporary file that is renamed into place, so readers
// never observe a partial document.
package state
