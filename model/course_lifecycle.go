package model

import (
	"context"

	"github.com/Md-IrfanS/DevCamper-API/model/course"
)

// CreateCourse stores a new course and refreshes its bootcamp's average cost.
func CreateCourse(ctx context.Context, c *course.Course) error {
	if err := course.Insert(ctx, c); err != nil {
		return err
	}
	return UpdateAverageCost(ctx, c.Bootcamp)
}

// UpdateCourse stores changes to a course and refreshes its bootcamp's
// average cost.
func UpdateCourse(ctx context.Context, c *course.Course) error {
	if err := course.Replace(ctx, c); err != nil {
		return err
	}
	return UpdateAverageCost(ctx, c.Bootcamp)
}

// DeleteCourse removes a course and refreshes its bootcamp's average cost.
func DeleteCourse(ctx context.Context, c *course.Course) error {
	if err := course.Remove(ctx, c.Id); err != nil {
		return err
	}
	return UpdateAverageCost(ctx, c.Bootcamp)
}
