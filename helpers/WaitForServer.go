package helpers

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WaitForServer polls the health endpoint of the server at addr until it
// answers 200 or the attempts run out.
func WaitForServer(addr string, attempts int) error {
	url := strings.TrimRight(addr, "/") + "/health"
	for i := 0; i < attempts; i++ {
		resp, err := http.Get(url)
		if err == nil && resp.StatusCode == 200 {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server at %s did not answer after %d attempts", addr, attempts)
}
