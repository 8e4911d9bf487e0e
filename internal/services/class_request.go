package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gym_checkin_backend/internal/models"
	"gym_checkin_backend/internal/repositories"
	"gym_checkin_backend/pkg/utils"
)

// ClassRequest describes the class a member is checking into.
type ClassRequest struct {
	ClassCategory string  `json:"class_category" binding:"required,class_category"`
	TimeSlot      string  `json:"time_slot" binding:"omitempty,time_slot"`
	TrainerID     *string `json:"trainer_id"`
	Is1v2         bool    `json:"is_1v2"`
}

// classRequest is a ClassRequest that passed validation.
type classRequest struct {
	category  models.ClassCategory
	slot      string
	period    *string
	trainerID *uuid.UUID
	is1v2     bool
}

// Options holds settings shared by the check-in services.
type Options struct {
	// Location is the gym's time zone; check-in dates are taken there.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
	// MonthlyDailyLimit caps regular check-ins per day on monthly cards.
	MonthlyDailyLimit bool
}

func (o Options) today() time.Time {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	return models.CivilDate(now(), o.Location)
}

// validateClassRequest checks the category/slot/trainer combination. The
// trainer must exist; trainers are only read here.
func validateClassRequest(ctx context.Context, trainers repositories.TrainerRepository, req ClassRequest) (classRequest, error) {
	cat, ok := models.ParseClassCategory(req.ClassCategory)
	if !ok {
		return classRequest{}, fmt.Errorf("%w: %q is not one of group, private, kids_group", ErrInvalidCategory, req.ClassCategory)
	}

	slot := models.NormalizeTimeSlot(req.TimeSlot)
	if slot == "" && cat == models.ClassKidsGroup {
		slot = models.KidsGroupTimeSlot
	}
	if !models.IsValidTimeSlot(cat, slot) {
		return classRequest{}, fmt.Errorf("%w: %q is not offered for %s classes (valid: %s)",
			ErrInvalidSlot, req.TimeSlot, cat, strings.Join(models.TimeSlotsFor(cat), ", "))
	}

	out := classRequest{category: cat, slot: slot}
	if p := models.ClassPeriodFor(cat, slot); p != "" {
		out.period = &p
	}

	trainerID, err := utils.ParseOptionalID(req.TrainerID)
	if err != nil {
		return classRequest{}, fmt.Errorf("%w: trainer_id: %v", ErrInvalidID, err)
	}
	if cat != models.ClassPrivate {
		if trainerID != nil || req.Is1v2 {
			return classRequest{}, fmt.Errorf("%w: trainer and 1v2 only apply to private classes", ErrInvalidTrainer)
		}
		return out, nil
	}

	if trainerID == nil {
		return classRequest{}, fmt.Errorf("%w: private classes need a trainer_id", ErrInvalidTrainer)
	}
	if _, err := trainers.GetTrainerByID(ctx, nil, *trainerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return classRequest{}, fmt.Errorf("%w: trainer %s does not exist", ErrInvalidTrainer, *trainerID)
		}
		return classRequest{}, fmt.Errorf("%w: looking up trainer: %v", ErrTransientFailure, err)
	}
	out.trainerID = trainerID
	out.is1v2 = req.Is1v2
	return out, nil
}

func (r classRequest) checkIn(memberID uuid.UUID, day time.Time) *models.CheckIn {
	return &models.CheckIn{
		MemberID:      memberID,
		TrainerID:     r.trainerID,
		ClassCategory: r.category,
		TimeSlot:      r.slot,
		ClassPeriod:   r.period,
		CheckInDate:   day,
		IsExtra:       true,
		Is1v2:         r.is1v2,
	}
}
