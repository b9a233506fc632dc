package seatmap

import (
	"strings"

	"bus-booking/models"
)

// Classify derives presentation flags for one seat of a layout generated
// from cfg. A seat may carry several flags at once.
func Classify(s models.SeatDescriptor, cfg models.SeatLayoutConfig) models.SeatClassification {
	if s.IsAisle() {
		return models.SeatClassification{Class: "aisle"}
	}

	backRow := s.Kind == models.SeatBackRow
	c := models.SeatClassification{
		Selectable: true,
		IsFront:    s.Row <= cfg.FrontRowsMark,
		IsBack:     s.Row > cfg.Rows-cfg.BackRowsMark || backRow,
	}

	switch {
	case s.Block == models.BlockLeft:
		c.IsWindow = s.Pos == 0
		c.IsAisleSeat = s.Pos == cfg.Left-1
	case s.Block == models.BlockRight:
		c.IsWindow = s.Pos == cfg.Right-1
		c.IsAisleSeat = s.Pos == 0
	case backRow:
		c.IsWindow = s.Pos == 0 || s.Pos == cfg.BackRowSeats-1
		c.IsMiddle = cfg.BackRowSeats%2 == 1 && s.Pos == cfg.BackRowSeats/2
	}

	classes := []string{"seat"}
	if c.IsWindow {
		classes = append(classes, "window")
	}
	if c.IsAisleSeat {
		classes = append(classes, "aisle-seat")
	}
	if c.IsMiddle {
		classes = append(classes, "middle")
	}
	if c.IsFront {
		classes = append(classes, "front")
	}
	if c.IsBack {
		classes = append(classes, "back")
	}
	c.Class = strings.Join(classes, " ")
	return c
}

// Title is the hover text for a seat, e.g. "1A • Window • Front".
func Title(s models.SeatDescriptor, c models.SeatClassification) string {
	if s.IsAisle() {
		return ""
	}
	parts := []string{s.Label}
	if c.IsWindow {
		parts = append(parts, "Window")
	}
	if c.IsAisleSeat {
		parts = append(parts, "Aisle")
	}
	if c.IsMiddle {
		parts = append(parts, "Middle")
	}
	if c.IsFront {
		parts = append(parts, "Front")
	} else if c.IsBack {
		parts = append(parts, "Back")
	}
	return strings.Join(parts, " • ")
}
