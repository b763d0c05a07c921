package helpers

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"bridge/internal/configuration"
	"bridge/internal/models"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
)

type tokenConfig struct {
	audience      string
	expiryMinutes int
}

func createToken(jwtSecret string, customer *models.Customer, config tokenConfig) (string, error) {
	claims := models.SessionClaims{
		CustomerID: customer.ID,
		Login:      customer.Login,
		Email:      customer.Email,
		Aud:        config.audience,
		Issuer:     configuration.AppName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  &jwt.NumericDate{Time: time.Now()},
			ExpiresAt: &jwt.NumericDate{Time: time.Now().Add(time.Minute * time.Duration(config.expiryMinutes))},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func NewAccessToken(jwtSecret string, customer *models.Customer, expiryMinutes int) (string, error) {
	return createToken(jwtSecret, customer, tokenConfig{
		audience:      configuration.AudienceAccessToken,
		expiryMinutes: expiryMinutes,
	})
}

func NewRefreshToken(jwtSecret string, customer *models.Customer, expiryMinutes int) (string, error) {
	return createToken(jwtSecret, customer, tokenConfig{
		audience:      configuration.AudienceRefreshToken,
		expiryMinutes: expiryMinutes,
	})
}

// ParseToken validates signature, expiry and signing method. The requireBearer
// parameter controls whether the "Bearer " prefix is required.
func ParseToken(jwtSecret string, tokenString string, requireBearer bool) (models.SessionClaims, error) {
	if requireBearer {
		if !strings.HasPrefix(tokenString, "Bearer ") {
			return models.SessionClaims{}, errors.New("invalid token")
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	}

	claims := &models.SessionClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		},
	)
	if err != nil {
		return models.SessionClaims{}, errors.New("invalid token")
	}

	return *claims, nil
}

func GetSessionClaims(c context.Context) (models.SessionClaims, error) {
	value, ok := c.Value(models.SessionClaimKey{}).(models.SessionClaims)
	if !ok {
		return models.SessionClaims{}, errors.New("invalid session claims")
	}
	return value, nil
}

func CreateHash(password string) (string, error) {
	argonParams := argon2id.Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  32,
		KeyLength:   32,
	}
	hash, err := argon2id.CreateHash(password, &argonParams)
	if err != nil {
		return "", errors.New("can not create hash password")
	}

	return hash, nil
}

// GeneratePassword returns a random credential for lazily created customer
// accounts. It exists only to satisfy the store's mandatory-credential
// contract; the provider remains the real authentication authority.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const passwordLength = 16
	password := make([]byte, passwordLength)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
