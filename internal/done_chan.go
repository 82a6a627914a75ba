package internal

import "sync"

// DoneChan is closed when a background task has fully terminated.
type DoneChan chan struct{}

// DoneFunc initiates a shutdown and returns the channel that closes
// once it has completed.
type DoneFunc func() DoneChan

func wrapWaitGroup(wg *sync.WaitGroup) DoneChan {
	ret := make(DoneChan)
	go func() {
		wg.Wait()
		close(ret)
	}()
	return ret
}

// Combine returns a channel that closes once every input channel has
// closed. Used to join the shutdown of several background tasks into
// one completion signal.
func Combine(chans ...DoneChan) DoneChan {
	ret := make(DoneChan)
	go func() {
		for _, ch := range chans {
			<-ch
		}
		close(ret)
	}()
	return ret
}
