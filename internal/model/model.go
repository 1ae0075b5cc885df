package model

import (
	"github.com/LeonardoBeccarini/field_simulator/internal/model/entities"
	"github.com/LeonardoBeccarini/field_simulator/internal/model/messages"
)

// Alias per esporre tipi comuni ai servizi

type (
	SensorReading   = messages.SensorReading
	Roster          = entities.Roster
	ZoneSpec        = entities.ZoneSpec
	FieldSpec       = entities.FieldSpec
	SensorSpec      = entities.SensorSpec
	ActuatorSpec    = entities.ActuatorSpec
	SensorKind      = entities.SensorKind
	ActuatorKind    = entities.ActuatorKind
	MeasurementUnit = entities.MeasurementUnit
)
