package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Role Validation Tests
// ============================================================================

func TestValidRoles_ContainsAll(t *testing.T) {
	roles := ValidRoles()
	expected := []string{RoleCustomer, RoleAdmin, RoleOwner}
	assert.ElementsMatch(t, expected, roles)
}

func TestIsValidRole_ValidRoles(t *testing.T) {
	for _, r := range ValidRoles() {
		assert.True(t, IsValidRole(r), "expected %q to be valid", r)
	}
}

func TestIsValidRole_Invalid(t *testing.T) {
	assert.False(t, IsValidRole("unknown"))
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole("superadmin"))
}

// ============================================================================
// User Struct Tests
// ============================================================================

func TestUser_PasswordHashExcludedFromJSON(t *testing.T) {
	u := User{PasswordHash: "secret"}
	assert.Equal(t, "secret", u.PasswordHash)
	// The json:"-" tag ensures PasswordHash is excluded from serialization.
	// Testing struct tag presence is validated at compile time.
}

func TestUser_DefaultFields(t *testing.T) {
	u := User{}
	assert.False(t, u.IsActive)
	assert.Empty(t, u.Role)
}

func TestUser_ActiveUser(t *testing.T) {
	u := User{
		ID:        "user-1",
		Email:     "test@example.com",
		FirstName: "John",
		LastName:  "Doe",
		Phone:     "0901234567",
		Role:      RoleCustomer,
		IsActive:  true,
	}
	assert.True(t, u.IsActive)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.Equal(t, "0901234567", u.Phone)
}

// ============================================================================
// RefreshToken Tests
// ============================================================================

func TestRefreshToken_TokenHashExcludedFromJSON(t *testing.T) {
	rt := RefreshToken{TokenHash: "hashed-value"}
	assert.Equal(t, "hashed-value", rt.TokenHash)
}

func TestRefreshToken_Expiry(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	rt := RefreshToken{ExpiresAt: future}
	assert.True(t, rt.ExpiresAt.After(time.Now()))
}

func TestRefreshToken_Revoked(t *testing.T) {
	now := time.Now()
	rt := RefreshToken{RevokedAt: &now}
	assert.NotNil(t, rt.RevokedAt)
}

func TestRefreshToken_NotRevoked(t *testing.T) {
	rt := RefreshToken{}
	assert.Nil(t, rt.RevokedAt)
}

// ============================================================================
// TokenPair Tests
// ============================================================================

func TestTokenPair_Fields(t *testing.T) {
	tp := TokenPair{AccessToken: "access-123", RefreshToken: "refresh-456"}
	assert.Equal(t, "access-123", tp.AccessToken)
	assert.Equal(t, "refresh-456", tp.RefreshToken)
}

// ============================================================================
// Status Tests
// ============================================================================

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusActive))
	assert.True(t, IsValidStatus(StatusInactive))
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("ACTIVE"))
	assert.False(t, IsValidStatus("deleted"))
}

// ============================================================================
// Image Tests
// ============================================================================

func TestIsAllowedImageType(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/webp", "image/gif"} {
		assert.True(t, IsAllowedImageType(ct), "expected %q to be allowed", ct)
	}
	assert.False(t, IsAllowedImageType("image/svg+xml"))
	assert.False(t, IsAllowedImageType("application/pdf"))
	assert.False(t, IsAllowedImageType(""))
}

func TestImage_DataExcludedFromJSON(t *testing.T) {
	img := Image{Name: "logo.png", ContentType: "image/png", Data: []byte{0x89}}
	assert.Equal(t, "logo.png", img.Name)
	assert.NotEmpty(t, img.Data)
}
