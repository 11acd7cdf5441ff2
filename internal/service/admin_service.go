package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/warehouse-ticketing/internal/auth"
	"github.com/spec-kit/warehouse-ticketing/internal/config"
	"github.com/spec-kit/warehouse-ticketing/internal/domain"
	"github.com/spec-kit/warehouse-ticketing/internal/repository"
	apperrors "github.com/spec-kit/warehouse-ticketing/pkg/util"
)

// AdminService covers the admin panel operations: warehouse reference
// data, accounts with warehouse grants, and moderation (ticket delete,
// comment edit/delete). Handlers gate every call behind the admin role.
type AdminService struct {
	warehouses  repository.WarehouseRepository
	users       repository.UserRepository
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	cfg         config.AuthConfig
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	WarehouseRepo  repository.WarehouseRepository
	UserRepo       repository.UserRepository
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
}

// NewAdminService constructs the service.
func NewAdminService(cfg config.AuthConfig, deps AdminDependencies) *AdminService {
	return &AdminService{
		warehouses:  deps.WarehouseRepo,
		users:       deps.UserRepo,
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		cfg:         cfg,
	}
}

// CreateWarehouse adds reference data.
func (s *AdminService) CreateWarehouse(ctx context.Context, name string) (*domain.Warehouse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	warehouse := &domain.Warehouse{Name: name}
	if err := s.warehouses.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// RenameWarehouse updates a warehouse name.
func (s *AdminService) RenameWarehouse(ctx context.Context, id int64, name string) (*domain.Warehouse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	warehouse := &domain.Warehouse{ID: id, Name: name}
	if err := s.warehouses.Update(ctx, warehouse); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("warehouse", nil)
		}
		return nil, err
	}
	return warehouse, nil
}

// DeleteWarehouse removes a warehouse.
func (s *AdminService) DeleteWarehouse(ctx context.Context, id int64) error {
	if err := s.warehouses.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("warehouse", nil)
		}
		return err
	}
	return nil
}

// ListWarehouses returns all warehouses.
func (s *AdminService) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	return s.warehouses.List(ctx, nil)
}

// UserCreateInput describes admin account creation.
type UserCreateInput struct {
	Username     string
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Role         domain.UserRole
	WarehouseIDs []int64
}

// CreateUser provisions an account with its warehouse grants.
func (s *AdminService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}
	if input.Role == "" {
		input.Role = domain.RoleUser
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
		WarehouseIDs: input.WarehouseIDs,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all accounts with their grants.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateUserGrants replaces a user's warehouse grant set.
func (s *AdminService) UpdateUserGrants(ctx context.Context, userID string, warehouseIDs []int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	return s.users.ReplaceGrants(ctx, userID, warehouseIDs)
}

// ResetPassword sets a new password for a user.
func (s *AdminService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if newPassword == "" {
		return apperrors.NewValidationError("password required", nil)
	}
	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	return nil
}

// DeleteTicket removes a ticket and every dependent row (comments,
// attachments, view statuses) so no stale cross-references survive the
// deletion. Live connections may still hold events for the id; readers of
// a deleted ticket get not-found, never a crash.
func (s *AdminService) DeleteTicket(ctx context.Context, ticketID int64) error {
	if err := s.tickets.DeleteCascade(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", nil)
		}
		return err
	}
	return nil
}

// EditComment replaces comment content. The timestamp bump makes the edit
// count as new activity for every viewer except the editor.
func (s *AdminService) EditComment(ctx context.Context, commentID int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	if err := s.comments.UpdateContent(ctx, commentID, content, time.Now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment", nil)
		}
		return err
	}
	return nil
}

// DeleteComment removes a comment and its attachments.
func (s *AdminService) DeleteComment(ctx context.Context, commentID int64) error {
	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment", nil)
		}
		return err
	}
	return nil
}

// DeleteAttachment removes attachment metadata.
func (s *AdminService) DeleteAttachment(ctx context.Context, attachmentID int64) error {
	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attachment", nil)
		}
		return err
	}
	return nil
}
