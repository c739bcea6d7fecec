package core

import "sync"

// Worker drains a request mailbox on its own goroutine, one request at a
// time, in FIFO order.
type Worker struct {
	requests *mailbox[request]
	handle   func(request)

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func startWorker(requests *mailbox[request], handle func(request)) *Worker {
	w := &Worker{
		requests: requests,
		handle:   handle,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case <-w.requests.Ready():
		}

		for {
			select {
			case <-w.stop:
				return
			default:
			}
			req, ok := w.requests.Next()
			if !ok {
				break
			}
			w.handle(req)
		}
	}
}

// Stop stops accepting requests, lets the request in progress finish and
// waits for the goroutine to exit. There is no timeout.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.requests.Close()
		close(w.stop)
	})
	<-w.done
}

// Done is closed once the worker goroutine exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
