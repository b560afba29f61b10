package util

// Progress counts finished jobs and reports them on stderr when the
// "verbose" flag is set. Errors are always reported.
type Progress struct {
	errs chan error
	done chan int
}

func NewProgress(total int) Progress {
	p := Progress{make(chan error), make(chan int)}
	go func() {
		completed, errorCount := 0, 0
		for err := range p.errs {
			if err == nil {
				completed++
			} else {
				errorCount++
				if FlagVerbose {
					Warnf("\r%s                                    \n", err)
				} else {
					Warnf("%s", err)
				}
			}

			ratio := 100.0 * (float64(completed+errorCount) / float64(total))
			Verbosef("\r%d of %d comparisons done (%0.2f%% done, %d errors)",
				completed+errorCount, total, ratio, errorCount)
		}
		Verbosef("\n")
		p.done <- errorCount
	}()
	return p
}

func (p Progress) JobDone(err error) {
	p.errs <- err
}

// Close waits for every reported job to be counted and returns the number
// that failed.
func (p Progress) Close() int {
	close(p.errs)
	return <-p.done
}
