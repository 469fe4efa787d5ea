package business

import (
	"context"
	"testing"

	"github.com/dasbor/backend/internal/domain/business"
	"github.com/dasbor/backend/internal/domain/identity"
	"github.com/dasbor/backend/internal/domain/shared"
	"github.com/dasbor/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockBusinessRepository is a mock implementation of business.BusinessRepository
type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) Create(ctx context.Context, b *business.Business) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBusinessRepository) Update(ctx context.Context, b *business.Business) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*business.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockBusinessRepository) FindBySlug(ctx context.Context, slug string) (*business.Business, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockBusinessRepository) FindAll(ctx context.Context, filter business.BusinessFilter) ([]*business.Business, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*business.Business), args.Get(1).(int64), args.Error(2)
}

func (m *MockBusinessRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).(int64), args.Error(1)
}

type businessHarness struct {
	service      *Service
	businessRepo *MockBusinessRepository
	userRepo     *MockUserRepository
	logoStorage  *storage.LocalLogoStorage
}

func newBusinessHarness(t *testing.T) *businessHarness {
	t.Helper()
	businessRepo := new(MockBusinessRepository)
	userRepo := new(MockUserRepository)
	logoStorage, err := storage.NewLocalLogoStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return &businessHarness{
		service:      NewService(businessRepo, userRepo, logoStorage, zap.NewNop()),
		businessRepo: businessRepo,
		userRepo:     userRepo,
		logoStorage:  logoStorage,
	}
}

func newStoredBusiness(t *testing.T) *business.Business {
	t.Helper()
	biz, err := business.NewBusiness("Kopi Senja", "kopi-senja")
	require.NoError(t, err)
	return biz
}

func TestBusinessService_CreateBusiness(t *testing.T) {
	t.Run("creates with a unique slug", func(t *testing.T) {
		h := newBusinessHarness(t)
		h.businessRepo.On("ExistsBySlug", mock.Anything, "kopi-senja").Return(false, nil)
		h.businessRepo.On("Create", mock.Anything, mock.AnythingOfType("*business.Business")).Return(nil)

		result, err := h.service.CreateBusiness(context.Background(), CreateBusinessInput{
			Name:        "Kopi Senja",
			Slug:        " Kopi-Senja ",
			Description: "Kedai kopi di sudut kota",
		})

		require.NoError(t, err)
		assert.Equal(t, "kopi-senja", result.Slug)
		assert.Equal(t, "Kedai kopi di sudut kota", result.Description)
		assert.Equal(t, string(business.BusinessStatusActive), result.Status)
		assert.False(t, result.HasSheetLink)
		assert.False(t, result.CanDispatch)
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		h := newBusinessHarness(t)
		h.businessRepo.On("ExistsBySlug", mock.Anything, "kopi-senja").Return(true, nil)

		_, err := h.service.CreateBusiness(context.Background(), CreateBusinessInput{
			Name: "Kopi Senja",
			Slug: "kopi-senja",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SLUG_TAKEN", domainErr.Code)
		h.businessRepo.AssertNotCalled(t, "Create")
	})
}

func TestBusinessService_UpdateSettings(t *testing.T) {
	t.Run("stores all three integrations", func(t *testing.T) {
		h := newBusinessHarness(t)
		biz := newStoredBusiness(t)
		h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)
		h.businessRepo.On("Update", mock.Anything, biz).Return(nil)

		sheetURL := "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0"
		sender := "628111222333"
		webhook := "https://flows.example.com/hooks/wa"
		result, err := h.service.UpdateSettings(context.Background(), biz.ID, UpdateSettingsInput{
			SheetURL:       &sheetURL,
			WhatsAppSender: &sender,
			WebhookURL:     &webhook,
		})

		require.NoError(t, err)
		assert.True(t, result.HasSheetLink)
		assert.True(t, result.CanDispatch)
	})

	t.Run("invalid sheet link rejected", func(t *testing.T) {
		h := newBusinessHarness(t)
		biz := newStoredBusiness(t)
		h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)

		bad := "https://example.com/not-a-sheet"
		_, err := h.service.UpdateSettings(context.Background(), biz.ID, UpdateSettingsInput{
			SheetURL: &bad,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_SPREADSHEET_URL", domainErr.Code)
		h.businessRepo.AssertNotCalled(t, "Update")
	})

	t.Run("empty string clears a setting", func(t *testing.T) {
		h := newBusinessHarness(t)
		biz := newStoredBusiness(t)
		require.NoError(t, biz.SetWhatsAppSender("628111222333"))
		h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)
		h.businessRepo.On("Update", mock.Anything, biz).Return(nil)

		empty := ""
		result, err := h.service.UpdateSettings(context.Background(), biz.ID, UpdateSettingsInput{
			WhatsAppSender: &empty,
		})

		require.NoError(t, err)
		assert.Empty(t, result.WhatsAppSender)
	})
}

func TestBusinessService_UploadLogo(t *testing.T) {
	t.Run("stores the logo and resolves its URL", func(t *testing.T) {
		h := newBusinessHarness(t)
		biz := newStoredBusiness(t)
		h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)
		h.businessRepo.On("Update", mock.Anything, biz).Return(nil)

		result, err := h.service.UploadLogo(context.Background(), biz.ID, UploadLogoInput{
			Filename:    "logo.png",
			ContentType: "image/png",
			Data:        []byte("png-bytes"),
		})

		require.NoError(t, err)
		assert.NotEmpty(t, biz.LogoKey)
		assert.Contains(t, result.LogoURL, "/uploads/logos/"+biz.ID.String()+"/")

		exists, err := h.logoStorage.Exists(context.Background(), biz.LogoKey)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("rejects unsupported content types", func(t *testing.T) {
		h := newBusinessHarness(t)
		biz := newStoredBusiness(t)
		h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)

		_, err := h.service.UploadLogo(context.Background(), biz.ID, UploadLogoInput{
			Filename:    "logo.pdf",
			ContentType: "application/pdf",
			Data:        []byte("x"),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_LOGO", domainErr.Code)
	})

	t.Run("rejects empty uploads", func(t *testing.T) {
		h := newBusinessHarness(t)
		biz := newStoredBusiness(t)
		h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)

		_, err := h.service.UploadLogo(context.Background(), biz.ID, UploadLogoInput{
			Filename:    "logo.png",
			ContentType: "image/png",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_LOGO", domainErr.Code)
	})

	t.Run("replacing a logo deletes the previous object", func(t *testing.T) {
		h := newBusinessHarness(t)
		biz := newStoredBusiness(t)
		h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)
		h.businessRepo.On("Update", mock.Anything, biz).Return(nil)

		_, err := h.service.UploadLogo(context.Background(), biz.ID, UploadLogoInput{
			Filename:    "first.png",
			ContentType: "image/png",
			Data:        []byte("one"),
		})
		require.NoError(t, err)
		firstKey := biz.LogoKey

		_, err = h.service.UploadLogo(context.Background(), biz.ID, UploadLogoInput{
			Filename:    "second.png",
			ContentType: "image/png",
			Data:        []byte("two"),
		})
		require.NoError(t, err)
		require.NotEqual(t, firstKey, biz.LogoKey)

		exists, err := h.logoStorage.Exists(context.Background(), firstKey)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestBusinessService_ArchiveAndRestore(t *testing.T) {
	h := newBusinessHarness(t)
	biz := newStoredBusiness(t)
	h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)
	h.businessRepo.On("Update", mock.Anything, biz).Return(nil)

	archived, err := h.service.ArchiveBusiness(context.Background(), biz.ID)
	require.NoError(t, err)
	assert.Equal(t, string(business.BusinessStatusArchived), archived.Status)

	// double archive surfaces the domain error
	_, err = h.service.ArchiveBusiness(context.Background(), biz.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_ARCHIVED", domainErr.Code)

	restored, err := h.service.RestoreBusiness(context.Background(), biz.ID)
	require.NoError(t, err)
	assert.Equal(t, string(business.BusinessStatusActive), restored.Status)
}

func TestBusinessService_DeleteBusiness(t *testing.T) {
	t.Run("deletes when no admins remain", func(t *testing.T) {
		h := newBusinessHarness(t)
		biz := newStoredBusiness(t)
		h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)
		h.userRepo.On("CountByBusiness", mock.Anything, biz.ID).Return(int64(0), nil)
		h.businessRepo.On("Delete", mock.Anything, biz.ID).Return(nil)

		err := h.service.DeleteBusiness(context.Background(), biz.ID)

		require.NoError(t, err)
		h.businessRepo.AssertExpectations(t)
	})

	t.Run("blocked while admin accounts exist", func(t *testing.T) {
		h := newBusinessHarness(t)
		biz := newStoredBusiness(t)
		h.businessRepo.On("FindByID", mock.Anything, biz.ID).Return(biz, nil)
		h.userRepo.On("CountByBusiness", mock.Anything, biz.ID).Return(int64(2), nil)

		err := h.service.DeleteBusiness(context.Background(), biz.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "BUSINESS_HAS_ADMINS", domainErr.Code)
		h.businessRepo.AssertNotCalled(t, "Delete")
	})
}

func TestBusinessService_ListBusinesses(t *testing.T) {
	h := newBusinessHarness(t)
	biz := newStoredBusiness(t)
	h.businessRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f business.BusinessFilter) bool {
		return f.Keyword == "kopi" && f.Status != nil && *f.Status == business.BusinessStatusActive
	})).Return([]*business.Business{biz}, int64(1), nil)

	result, err := h.service.ListBusinesses(context.Background(), ListBusinessesInput{
		Keyword: "kopi",
		Status:  "active",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Businesses, 1)
	assert.Equal(t, "kopi-senja", result.Businesses[0].Slug)
}
