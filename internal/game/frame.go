package game

import (
	"fmt"

	"github.com/zeusync/dropchooser/internal/core/drawdata"
	"github.com/zeusync/dropchooser/internal/core/models"
	"github.com/zeusync/dropchooser/internal/core/systems/physics"
)

// State is the round lifecycle.
type State uint8

const (
	// Waiting means the floor still holds the choices.
	Waiting State = iota
	// Dropping means the floor is gone and no choice has reached the sensor.
	Dropping
	// Finished means a winner has been picked.
	Finished
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Dropping:
		return "dropping"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(text []byte) error {
	for c := Waiting; c <= Finished; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown round state %q", text)
}

// Winner is the first choice that reached the sensor.
type Winner struct {
	ID    models.EntityID `json:"id"`
	Name  string          `json:"name"`
	Color models.Color    `json:"color"`
}

// Drawable is one renderable body.
type Drawable struct {
	ID         models.EntityID     `json:"id"`
	Kind       drawdata.Kind       `json:"kind"`
	Position   physics.Vec2        `json:"position"`
	Angle      float64             `json:"angle"`
	Attributes drawdata.Attributes `json:"attributes"`
}

// Banner announces the winner.
type Banner struct {
	Text      string       `json:"text"`
	Color     models.Color `json:"color"`
	TextColor models.Color `json:"text_color"`
}

// Frame is a self-contained snapshot of what to draw after a tick.
// It shares no memory with the simulation.
type Frame struct {
	Tick       uint64       `json:"tick"`
	State      State        `json:"state"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Background models.Color `json:"background"`
	Drawables  []Drawable   `json:"drawables"`
	Banner     *Banner      `json:"banner,omitempty"`
}

// WinnerText formats the announcement for name.
func WinnerText(name string) string { return name + " Won!!!" }

func newBanner(w Winner) *Banner {
	text := models.Black
	if w.Color.IsDark() {
		text = models.White
	}
	return &Banner{Text: WinnerText(w.Name), Color: w.Color, TextColor: text}
}
