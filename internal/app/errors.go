package service

import (
	"errors"
	"fmt"

	"github.com/okian/teacheval/internal/domain/model"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoLoader   = errors.New("no catalog loader configured")
	ErrNoReports  = fmt.Errorf("%w: no teacher reports to export", model.ErrNotFound)
)
