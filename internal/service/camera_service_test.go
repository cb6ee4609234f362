package service

import (
	"testing"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCameraCRUD(t *testing.T) {
	e := newTestEnv(t)
	admin := actorOf(testutil.Admin(t, e.db))

	cam, err := e.cameras.Create(&CameraRequest{
		Name:      "Cellar door",
		Location:  "Barrel room",
		StreamURL: "rtsp://10.0.0.12/stream1",
		Status:    model.CameraOnline,
	}, admin)
	require.NoError(t, err)
	require.Equal(t, admin.ID.String(), cam.CreatedBy)

	_, err = e.cameras.Create(&CameraRequest{Name: "Gate", Location: "Yard", Status: "broken"}, admin)
	require.ErrorIs(t, err, ErrValidation)
	_, err = e.cameras.Create(&CameraRequest{Name: "Gate", Location: "Yard", Status: model.CameraOffline, StreamURL: "not a url"}, admin)
	require.ErrorIs(t, err, ErrValidation)

	updated, err := e.cameras.Update(cam.ID, &CameraRequest{
		Name: "Cellar door", Location: "Barrel room", Status: model.CameraMaintenance, Notes: "lens replaced",
	}, admin)
	require.NoError(t, err)
	require.Equal(t, model.CameraMaintenance, updated.Status)

	all, err := e.cameras.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "lens replaced", all[0].Notes)

	require.NoError(t, e.cameras.Delete(cam.ID, admin))
	_, err = e.cameras.GetByID(cam.ID)
	require.ErrorIs(t, err, ErrCameraNotFound)
	require.ErrorIs(t, e.cameras.Delete(uuid.New(), admin), ErrCameraNotFound)
}
