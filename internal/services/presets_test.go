package services

import (
	"context"
	"testing"
	"travel-fare-service/internal/adapters/repositories"
	"travel-fare-service/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewPresetService(repositories.NewMemoryPresetRepository())

	hiace, err := svc.Save(ctx, domain.VehiclePreset{Name: "  Toyota HiAce ", FuelConsumption: 9, Passengers: 14})
	require.NoError(t, err)
	assert.Equal(t, "Toyota HiAce", hiace.Name)
	_, err = uuid.Parse(hiace.ID)
	assert.NoError(t, err, "generated id should be a uuid")

	_, err = svc.Save(ctx, domain.VehiclePreset{ID: "avanza", Name: "Avanza", FuelConsumption: 12, Passengers: 6})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Avanza", list[0].Name)

	hiace.Passengers = 15
	_, err = svc.Save(ctx, hiace)
	require.NoError(t, err)

	got, err := svc.Get(ctx, hiace.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Passengers)

	require.NoError(t, svc.Delete(ctx, "avanza"))
	assert.ErrorIs(t, svc.Delete(ctx, "avanza"), domain.ErrPresetNotFound)

	_, err = svc.Get(ctx, "avanza")
	assert.ErrorIs(t, err, domain.ErrPresetNotFound)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPresetServiceRejectsInvalid(t *testing.T) {
	svc := NewPresetService(repositories.NewMemoryPresetRepository())

	_, err := svc.Save(context.Background(), domain.VehiclePreset{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Save(context.Background(), domain.VehiclePreset{Name: "Bus", Passengers: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
