package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalops/clinic-api/internal/model"
	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

type fakeRepo struct {
	services  map[uuid.UUID]*model.Service
	listCalls int
	getCalls  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{services: make(map[uuid.UUID]*model.Service)}
}

func (f *fakeRepo) Create(_ context.Context, svc *model.Service) error {
	svc.ID = uuid.New()
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	f.getCalls++
	svc, ok := f.services[id]
	if !ok {
		return nil, apperrors.NewNotFound("service", nil)
	}
	copied := *svc
	return &copied, nil
}

func (f *fakeRepo) Update(_ context.Context, svc *model.Service) error {
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.services, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]*model.Service, error) {
	f.listCalls++
	out := make([]*model.Service, 0, len(f.services))
	for _, svc := range f.services {
		out = append(out, svc)
	}
	return out, nil
}

func TestCreateService(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.CreateService(context.Background(), &model.CreateServiceRequest{
		Name:     "Cleaning",
		Duration: 30,
		Price:    80,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 30, created.Duration)
}

func TestGetServiceCaches(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.CreateService(context.Background(), &model.CreateServiceRequest{
		Name: "Cleaning", Duration: 30, Price: 80,
	})
	require.NoError(t, err)

	_, err = svc.GetService(context.Background(), created.ID)
	require.NoError(t, err)
	_, err = svc.GetService(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.getCalls, "second read must come from cache")
}

func TestListServicesCacheFlushedOnWrite(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	_, err = svc.ListServices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.CreateService(context.Background(), &model.CreateServiceRequest{
		Name: "Whitening", Duration: 60, Price: 200,
	})
	require.NoError(t, err)

	services, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls, "write must invalidate the list")
	assert.Len(t, services, 1)
}

func TestUpdateServicePartial(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.CreateService(context.Background(), &model.CreateServiceRequest{
		Name: "Cleaning", Description: "Basic cleaning", Duration: 30, Price: 80,
	})
	require.NoError(t, err)

	duration := 45
	updated, err := svc.UpdateService(context.Background(), created.ID, &model.UpdateServiceRequest{
		Duration: &duration,
	})
	require.NoError(t, err)

	assert.Equal(t, 45, updated.Duration)
	assert.Equal(t, "Cleaning", updated.Name, "unset fields stay untouched")
	assert.Equal(t, 80.0, updated.Price)
}

func TestGetServiceNotFound(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.GetService(context.Background(), uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
