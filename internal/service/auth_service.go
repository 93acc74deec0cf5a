package service

import (
	"context"
	"errors"
	"time"

	"fatturaflow/internal/dto"
	"fatturaflow/internal/fattura"
	"fatturaflow/internal/models"
	"fatturaflow/internal/repository"
	"fatturaflow/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrCompanyNotFound    = errors.New("company not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCompanyExists      = errors.New("company already exists")
)

type AuthService struct {
	companyRepo *repository.CompanyRepository
	jwtManager  *auth.JWTManager
	logger      *zap.Logger
}

func NewAuthService(companyRepo *repository.CompanyRepository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		companyRepo: companyRepo,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	existing, _ := s.companyRepo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrCompanyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	company := &models.Company{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  hashedPassword,
		OwnTaxID:  fattura.NormalizeTaxID(req.OwnTaxID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}

	return s.issueTokens(company)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	company, err := s.companyRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPasswordHash(req.Password, company.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(company)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	companyIDStr, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	companyID, err := uuid.Parse(companyIDStr)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, ErrCompanyNotFound
	}

	return s.issueTokens(company)
}

// UpdateOwnTaxID sets the company's own VAT number, the reference every
// invoice is classified against. Stored normalized so classification and
// profile edits can never disagree on formatting.
func (s *AuthService) UpdateOwnTaxID(ctx context.Context, companyID uuid.UUID, rawTaxID string) (*dto.CompanyResponse, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, ErrCompanyNotFound
	}

	normalized := fattura.NormalizeTaxID(rawTaxID)
	if err := s.companyRepo.UpdateOwnTaxID(ctx, company.ID, normalized); err != nil {
		return nil, err
	}

	s.logger.Info("Company tax id updated",
		zap.String("company_id", company.ID.String()))

	return &dto.CompanyResponse{
		ID:       company.ID.String(),
		Name:     company.Name,
		Email:    company.Email,
		OwnTaxID: normalized,
	}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, companyID uuid.UUID) (*dto.CompanyResponse, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, ErrCompanyNotFound
	}
	return &dto.CompanyResponse{
		ID:       company.ID.String(),
		Name:     company.Name,
		Email:    company.Email,
		OwnTaxID: company.OwnTaxID,
	}, nil
}

func (s *AuthService) issueTokens(company *models.Company) (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(company.ID.String(), company.Name, company.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(company.ID.String())
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtManager.GetTokenDuration().Seconds()),
		Company: dto.CompanyResponse{
			ID:       company.ID.String(),
			Name:     company.Name,
			Email:    company.Email,
			OwnTaxID: company.OwnTaxID,
		},
	}, nil
}
