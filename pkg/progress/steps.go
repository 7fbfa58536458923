package progress

// Step is one named stage of a pipeline.
type Step struct {
	// Message is shown while the step runs
	Message string
	// Done is shown when the step succeeds; defaults to Message
	Done string
	Run  func() error
}

// RunSteps runs steps in order on p, stopping at the first failure. The
// failing step's error is returned unchanged.
func RunSteps(p Progress, steps ...Step) error {
	for _, step := range steps {
		if err := p.Start(step.Message); err != nil {
			return err
		}
		if err := step.Run(); err != nil {
			_ = p.Failure(step.Message)
			return err
		}
		done := step.Done
		if done == "" {
			done = step.Message
		}
		if err := p.Success(done); err != nil {
			return err
		}
	}
	return nil
}
