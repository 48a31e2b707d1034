package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

func Handler() http.Handler {

	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// Serve answers health checks on port until ctx is done.
func Serve(ctx context.Context, port string) error {

	s := http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.Shutdown(shutdown)
	}()

	err := s.ListenAndServe()

	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("health server failed: %w", err)
	}

	return nil
}
