package blocking

import "time"

// Poll is never reached from a goroutine launch or ServeHTTP, so the
// analyzer's stand-in classifies it as running on the UI thread: sleeping
// there is flagged as a starvation risk.
func Poll() {
	time.Sleep(time.Second) // want `UI thread may block: time\.Sleep`
}

func backgroundWorker() {
	time.Sleep(time.Second)
}

func launch() {
	go backgroundWorker()
}
