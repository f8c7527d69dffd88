package game

import (
	"errors"
	"fmt"

	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
)

type ErrInsufficientResources struct {
	UnitType  types.UnitType
	Cost      int
	Available int
}

func (e *ErrInsufficientResources) Error() string {
	return fmt.Sprintf("insufficient resources to build %s: need %d, have %d", e.UnitType, e.Cost, e.Available)
}

func IsInsufficientResources(err error) bool {
	var target *ErrInsufficientResources
	return errors.As(err, &target)
}

type ErrNotOwner struct {
	UnitID  string
	OwnerID int
}

func (e *ErrNotOwner) Error() string {
	return fmt.Sprintf("unit %s is not owned by player %d", e.UnitID, e.OwnerID)
}

func IsNotOwner(err error) bool {
	var target *ErrNotOwner
	return errors.As(err, &target)
}

type ErrUnknownUnit struct {
	ID string
}

func (e *ErrUnknownUnit) Error() string {
	return fmt.Sprintf("unknown unit or target %s", e.ID)
}

func IsUnknownUnit(err error) bool {
	var target *ErrUnknownUnit
	return errors.As(err, &target)
}

type ErrUnknownUnitType struct {
	UnitType types.UnitType
}

func (e *ErrUnknownUnitType) Error() string {
	return fmt.Sprintf("unknown unit type %s", e.UnitType)
}
