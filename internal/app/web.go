// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

// NewCalibrationMux routes the calibration websocket and the status API.
func NewCalibrationMux(h *CalibrationHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws/calibration", h)
	mux.HandleFunc("/api/calibration", h.ServeStatus)
	return mux
}

// RunCalibrationServer serves the calibration endpoints on port until ctx
// is cancelled.
func RunCalibrationServer(ctx context.Context, port int, h *CalibrationHandler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewCalibrationMux(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("calibration: server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("calibration server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("calibration server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
