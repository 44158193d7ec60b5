package bcrypt

import "golang.org/x/crypto/bcrypt"

// IBcrypt hashes short secrets before they go into the cache. Verification
// codes are stored only as bcrypt digests so a cache dump never reveals a
// live code.
type IBcrypt interface {
	Hash(secret string) (string, error)
	Compare(hash string, secret string) error
}

type bcryptService struct {
	cost int
}

func New() IBcrypt {
	return &bcryptService{
		cost: bcrypt.DefaultCost,
	}
}

func NewWithCost(cost int) IBcrypt {
	return &bcryptService{
		cost: cost,
	}
}

func (b *bcryptService) Hash(secret string) (string, error) {
	result, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func (b *bcryptService) Compare(hash string, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
}
