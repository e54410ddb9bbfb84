package service

import (
	"errors"

	"github.com/vaultline/authd/internal/core/domain"
)

func isConflict(err error) bool { return errors.Is(err, domain.ErrConflict) }

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
