package video

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Files names a command's input and output. Either may be a local path,
// a file:// URI or a remote reference the storage layer understands.
type Files struct {
	Input  string `validate:"required"`
	Output string `validate:"required"`
}

// ConvertOptions re-encodes (or remuxes) a video into another container
type ConvertOptions struct {
	Files
	SkipEncoding bool
}

// ResizeOptions scales a video to new dimensions
type ResizeOptions struct {
	Files
	Width              int `validate:"gt=0"`
	Height             int `validate:"gt=0"`
	WidthAsPercentage  bool
	HeightAsPercentage bool
	KeepRatio          bool
}

// RotateOptions rotates a video clockwise
type RotateOptions struct {
	Files
	Angle        float64
	PreserveSize bool
	FillColor    string
}

// FlipOptions mirrors a video; at least one direction is required
type FlipOptions struct {
	Files
	Horizontal bool `validate:"required_without=Vertical"`
	Vertical   bool
}

// MuteOptions drops a video's audio
type MuteOptions struct {
	Files
}

// WatermarkOptions overlays an image on a video
type WatermarkOptions struct {
	Files
	Watermark string   `validate:"required"`
	Position  Position `validate:"omitempty,position"`
	Opacity   float64  `validate:"gte=0,lte=1"`
	Scale     float64  `validate:"gt=0,lte=1"`
}

// DefaultWatermarkOptions returns the watermark defaults
func DefaultWatermarkOptions() WatermarkOptions {
	return WatermarkOptions{
		Position: Center,
		Opacity:  1.0,
		Scale:    0.2,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("position", func(fl validator.FieldLevel) bool {
		pos := Position(fl.Field().String())
		for _, p := range Positions {
			if pos == p {
				return true
			}
		}
		return false
	})
	return v
}

// validateOptions runs struct validation and flattens the result
func validateOptions(v *validator.Validate, opts interface{}) error {
	err := v.Struct(opts)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_without":
		return "at least one of horizontal or vertical is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and 1", field)
	case "position":
		return fmt.Sprintf("position must be one of %v", Positions)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
