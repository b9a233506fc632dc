// Package seatmap generates bus seat layouts, classifies seats for display and
// tracks the user's seat selection for the schedule on screen.
package seatmap

import (
	"fmt"

	"bus-booking/models"
)

// rightBlockOffset is the letter index the right block starts at ("C"), so a
// 2+2 coach reads A B | C D.
const rightBlockOffset = 2

// Generate lays out cfg row by row: left block, one aisle marker, right block,
// then the back bench at row Rows+1 if BackRowSeats > 0. The result depends on
// cfg alone.
func Generate(cfg models.SeatLayoutConfig) ([]models.SeatDescriptor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seats := make([]models.SeatDescriptor, 0, cfg.SeatCapacity()+cfg.Rows)
	rightStart := rightStartIndex(cfg)

	for r := 1; r <= cfg.Rows; r++ {
		for i := 0; i < cfg.Left; i++ {
			seats = append(seats, models.SeatDescriptor{
				Kind:  models.SeatBlock,
				Row:   r,
				Block: models.BlockLeft,
				Pos:   i,
				Label: seatLabel(r, i),
			})
		}
		seats = append(seats, models.SeatDescriptor{Kind: models.SeatAisle, Row: r})
		for j := 0; j < cfg.Right; j++ {
			seats = append(seats, models.SeatDescriptor{
				Kind:  models.SeatBlock,
				Row:   r,
				Block: models.BlockRight,
				Pos:   j,
				Label: seatLabel(r, rightStart+j),
			})
		}
	}

	if br := cfg.BackRow(); br > 0 {
		for k := 0; k < cfg.BackRowSeats; k++ {
			seats = append(seats, models.SeatDescriptor{
				Kind:  models.SeatBackRow,
				Row:   br,
				Block: models.BlockBack,
				Pos:   k,
				Label: seatLabel(br, k),
			})
		}
	}

	return seats, nil
}

// rightStartIndex keeps the fixed "C" start unless the left block is wider
// than two seats, in which case the right block continues after it so labels
// in a row never repeat.
func rightStartIndex(cfg models.SeatLayoutConfig) int {
	if cfg.Left > rightBlockOffset {
		return cfg.Left
	}
	return rightBlockOffset
}

func seatLabel(row, letterIndex int) string {
	return fmt.Sprintf("%d%s", row, seatLetter(letterIndex))
}

// seatLetter maps 0 -> A, 25 -> Z, 26 -> AA.
func seatLetter(i int) string {
	var buf []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

// Labels returns the selectable labels of a layout in layout order.
func Labels(seats []models.SeatDescriptor) []string {
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		if !s.IsAisle() {
			out = append(out, s.Label)
		}
	}
	return out
}
