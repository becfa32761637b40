package controller

import (
	"context"
	"fmt"

	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/store"
	"go.uber.org/zap"
)

// CheckSeed runs every seed record through the write gate against the seed
// records before it, the same way CreateEmployee would admit them one by
// one. It returns the first rejection, naming the record.
func CheckSeed(seed []models.Employee, validator FieldValidator) error {
	scratch := NewEmployeeService(store.NewStore(zap.NewNop()), validator, zap.NewNop())
	for i := range seed {
		emp := seed[i]
		if _, err := scratch.CreateEmployee(context.Background(), &emp); err != nil {
			return fmt.Errorf("seed employee %d (%s): %w", i+1, emp.FullName(), err)
		}
	}
	return nil
}
