package common

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessSubject  = "access"
	refreshSubject = "refresh"
)

// Claims represents the data stored in a token
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (tm *TokenManager) generate(userID, username, subject string, ttl time.Duration) (string, error) {
	now := tm.now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gotube",
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) GeneratePair(userID, username string) (*TokenPair, error) {
	access, err := tm.generate(userID, username, accessSubject, tm.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := tm.generate(userID, username, refreshSubject, tm.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (tm *TokenManager) parse(tokenString, subject string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithSubject(subject))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

func (tm *TokenManager) ValidateAccess(tokenString string) (*Claims, error) {
	return tm.parse(tokenString, accessSubject)
}

func (tm *TokenManager) ValidateRefresh(tokenString string) (*Claims, error) {
	return tm.parse(tokenString, refreshSubject)
}
