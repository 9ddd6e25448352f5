/* Copyright 2025 Dnote Authors
 *
 * This file is part of QRepair.
 *
 * QRepair is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * QRepair is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with QRepair.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package context carries request scoped values between middlewares and handlers
package context

import (
	"context"

	"github.com/qrepair/qrepair/pkg/server/session"
)

const (
	identityKey   privateKey = "identity"
	sessionKeyKey privateKey = "sessionKey"
)

type privateKey string

// WithIdentity creates a new context with the given identity
func WithIdentity(ctx context.Context, identity *session.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Identity retrieves the identity of the signed in user from the given context.
// If the context does not contain one, it returns nil.
func Identity(ctx context.Context) *session.Identity {
	if temp := ctx.Value(identityKey); temp != nil {
		if identity, ok := temp.(*session.Identity); ok {
			return identity
		}
	}

	return nil
}

// WithSessionKey creates a new context with the given session key
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyKey, key)
}

// SessionKey retrieves the session key from the given context
func SessionKey(ctx context.Context) string {
	if temp := ctx.Value(sessionKeyKey); temp != nil {
		if key, ok := temp.(string); ok {
			return key
		}
	}

	return ""
}
