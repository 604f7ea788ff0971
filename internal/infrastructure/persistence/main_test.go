package persistence

import (
	"os"
	"testing"

	"github.com/statyba/storefront/internal/domain/customer"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	customer.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}
