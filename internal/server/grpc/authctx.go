package grpcserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/fubl84/peakly-sub001/internal/errs"
)

type ctxKey string

const userIDKey ctxKey = "peakly.userID"

// tokenLeeway absorbs clock skew between the identity provider and this server.
const tokenLeeway = 30 * time.Second

// WithUserID stores the authenticated caller in ctx.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx returns the caller stored by WithUserID. uuid.Nil never counts.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// caller resolves the user of an RPC: the id stored by AuthUnary, else the
// bearer token itself.
func (s *Server) caller(ctx context.Context) (uuid.UUID, error) {
	if id, ok := UserIDFromCtx(ctx); ok {
		return id, nil
	}
	id, err := s.userIDFromCtx(ctx)
	if err != nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, "no auth")
	}
	return id, nil
}

// userIDFromCtx verifies the HS256 bearer token and returns its subject.
// Tokens are issued elsewhere; only the signature, time claims and subject
// are checked here. Errors wrap errs.ErrUnauthorized.
func (s *Server) userIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("signing method %v", t.Header["alg"])
		}
		return s.signKey, nil
	}, jwt.WithLeeway(tokenLeeway))
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("token: %w", errs.ErrUnauthorized)
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("subject %q: %w", claims.Subject, errs.ErrUnauthorized)
	}
	return id, nil
}

var errNoBearer = fmt.Errorf("no bearer token: %w", errs.ErrUnauthorized)

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errNoBearer
	}
	for _, v := range md.Get("authorization") {
		scheme, tok, found := strings.Cut(strings.TrimSpace(v), " ")
		if !found || !strings.EqualFold(scheme, "bearer") {
			continue
		}
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok, nil
		}
	}
	return "", errNoBearer
}
