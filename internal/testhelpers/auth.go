package testhelpers

import (
	"crypto/rand"
	"math/big"
	"testing"

	authorizer "github.com/localnerve/authorizer-go"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword returns a random password that satisfies the
// registration and Authorizer password rules.
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 12)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]
	password[3] = lower[randInt(len(lower))]

	for i := 4; i < len(password); i++ {
		password[i] = all[randInt(len(all))]
	}

	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

// AcquireSession signs up (or reuses) an Authorizer account and returns its
// access token for use as the cookie_session value.
func AcquireSession(t *testing.T, authzURL, email, password string) string {
	client, err := authorizer.NewAuthorizerClient("test_client", authzURL, "", nil)
	if err != nil {
		t.Fatalf("Failed to create authorizer client: %v", err)
	}

	_, err = client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		// Already registered accounts fall through to login
		t.Logf("Signup failed (might already exist): %v", err)
	}

	res, err := client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.AccessToken == nil {
		t.Fatal("Access token is nil")
	}
	return *res.AccessToken
}
