package liftlog

// optimistic applies a local state change, confirms it against the backend
// and reverts the local change when confirmation fails. No retry is
// attempted, the caller decides whether to try again.
func optimistic(apply, revert func(), confirm func() error) error {
	apply()
	if err := confirm(); err != nil {
		revert()
		return err
	}
	return nil
}
