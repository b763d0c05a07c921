package reconcile

import (
	"errors"

	"bridge/internal/apierrors"
	"bridge/internal/helpers"
	"bridge/internal/models"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Session is the local login handle issued once a remote identity has been
// reconciled. The refresh token is only minted for remember-me logins.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// Reconciler links remote identity profiles to local customer records. Every
// mutation runs inside one transaction: a partially created or partially
// updated customer is never observable.
type Reconciler struct {
	DB         *gorm.DB
	AuthConfig models.AuthConfig
}

// LinkOrCreate finds the customer whose login equals the profile UID, creating
// one when absent, writes through the canonical profile fields, authenticates
// with a freshly rotated throwaway credential and issues a local session.
// Duplicate creates for the same UID are serialized by the unique index on
// login; the transaction that loses that race rolls back whole.
func (r *Reconciler) LinkOrCreate(
	logger *zap.Logger,
	profile *models.RemoteProfile,
	rememberMe bool,
) (*models.Customer, Session, error) {
	email, ok := profile.PrimaryEmail()
	if !ok {
		return nil, Session{}, apierrors.NewAPIError(400, apierrors.ErrProfileNoEmail)
	}

	password, err := helpers.GeneratePassword()
	if err != nil {
		logger.Error("Failed to generate customer credential", zap.Error(err))
		return nil, Session{}, apierrors.NewAPIError(500, apierrors.ErrUnexpected)
	}

	var customer models.Customer
	var session Session

	err = r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("login = ?", profile.UID).First(&customer)
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		if result.RowsAffected == 0 {
			customer = models.Customer{Login: profile.UID}
			if createErr := tx.Create(&customer).Error; createErr != nil {
				logger.Error("Failed to create customer", zap.Error(createErr))
				return createErr
			}
		}

		// The store mandates a credential on every account even though the
		// provider is the real authenticator. Rotate it through the reset-token
		// lifecycle on every login and discard the plaintext afterwards.
		resetToken, tokenErr := createResetPasswordToken(tx, &customer)
		if tokenErr != nil {
			return tokenErr
		}
		if setErr := setPasswordWithToken(tx, &customer, resetToken, password); setErr != nil {
			return setErr
		}

		if authErr := authenticate(&customer, password); authErr != nil {
			logger.Error("Local authentication failed after credential rotation",
				zap.String("login", customer.Login), zap.Error(authErr))
			return authErr
		}

		customer.ApplyRemoteProfile(profile, email)
		if saveErr := tx.Save(&customer).Error; saveErr != nil {
			return saveErr
		}

		var loginErr error
		session, loginErr = r.login(&customer, rememberMe)
		return loginErr
	})
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			return nil, Session{}, apiErr
		}
		return nil, Session{}, apierrors.NewAPIError(500, apierrors.ErrUnexpected)
	}

	return &customer, session, nil
}

// UpdateExisting writes through the profile fields for an already linked
// customer. The update path never creates: an unknown UID is a not-found
// failure and performs no mutation.
func (r *Reconciler) UpdateExisting(
	logger *zap.Logger,
	profile *models.RemoteProfile,
) (*models.Customer, error) {
	email, ok := profile.PrimaryEmail()
	if !ok {
		return nil, apierrors.NewAPIError(400, apierrors.ErrProfileNoEmail)
	}

	var customer models.Customer

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("login = ?", profile.UID).First(&customer)
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apierrors.NewAPIError(404, apierrors.ErrCustomerNotFound)
		}

		customer.ApplyRemoteProfile(profile, email)
		return tx.Save(&customer).Error
	})
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		logger.Error("Failed to update customer", zap.String("uid", profile.UID), zap.Error(err))
		return nil, apierrors.NewAPIError(500, apierrors.ErrUnexpected)
	}

	return &customer, nil
}

// createResetPasswordToken starts the credential lifecycle the store requires:
// a password may only be set through a reset token.
func createResetPasswordToken(tx *gorm.DB, customer *models.Customer) (string, error) {
	token := uuid.NewString()
	tokenHash, err := helpers.CreateHash(token)
	if err != nil {
		return "", err
	}

	customer.ResetTokenHash = tokenHash
	if err := tx.Model(customer).Update("reset_token_hash", tokenHash).Error; err != nil {
		return "", err
	}
	return token, nil
}

func setPasswordWithToken(tx *gorm.DB, customer *models.Customer, token string, password string) error {
	match, err := argon2id.ComparePasswordAndHash(token, customer.ResetTokenHash)
	if err != nil || !match {
		return errors.New("invalid reset password token")
	}

	passwordHash, err := helpers.CreateHash(password)
	if err != nil {
		return err
	}

	customer.HashedPassword = passwordHash
	customer.ResetTokenHash = ""
	return tx.Model(customer).
		Updates(map[string]any{"hashed_password": passwordHash, "reset_token_hash": ""}).Error
}

func authenticate(customer *models.Customer, password string) error {
	match, err := argon2id.ComparePasswordAndHash(password, customer.HashedPassword)
	if err != nil {
		return err
	}
	if !match {
		return errors.New("credential mismatch")
	}
	return nil
}

func (r *Reconciler) login(customer *models.Customer, rememberMe bool) (Session, error) {
	accessToken, err := helpers.NewAccessToken(r.AuthConfig.JWTSecret, customer, r.AuthConfig.AccessTokenExpiry)
	if err != nil {
		return Session{}, apierrors.ErrGenerateAccessTokenFailed
	}

	session := Session{AccessToken: accessToken}

	if rememberMe {
		refreshToken, err := helpers.NewRefreshToken(r.AuthConfig.JWTSecret, customer, r.AuthConfig.RefreshTokenExpiry)
		if err != nil {
			return Session{}, apierrors.ErrGenerateRefreshTokenFailed
		}
		session.RefreshToken = refreshToken
	}

	return session, nil
}
