package auth

import (
	"bufio"
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"` // plaintext or bcrypt hash ($2a$/$2b$/$2y$)
	Role     string `yaml:"role"`
}

// Credentials is an immutable username -> account table.
type Credentials struct {
	accounts map[string]Account
}

func NewCredentials(accounts ...Account) *Credentials {
	c := &Credentials{accounts: make(map[string]Account, len(accounts))}
	for _, a := range accounts {
		c.add(a)
	}
	return c
}

func (c *Credentials) add(a Account) {
	if a.Username == "" {
		return
	}
	if a.Role == "" {
		a.Role = RoleUser
	}
	c.accounts[a.Username] = a
}

// LoadCredentials reads path as YAML (.yaml/.yml) or as "username:password" lines.
// A missing file yields an empty table; extra accounts are added after the file's.
func LoadCredentials(path string, extra ...Account) (*Credentials, error) {
	c := NewCredentials()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read credentials: %w", err)
	default:
		accounts, err := parseCredentials(path, b)
		if err != nil {
			return nil, err
		}
		for _, a := range accounts {
			c.add(a)
		}
	}
	for _, a := range extra {
		c.add(a)
	}
	return c, nil
}

func parseCredentials(path string, b []byte) ([]Account, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc struct {
			Users []Account `yaml:"users"`
		}
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("parse credentials yaml: %w", err)
		}
		return doc.Users, nil
	}

	var out []Account
	sc := bufio.NewScanner(strings.NewReader(string(b)))
	for sc.Scan() {
		user, pass, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !ok {
			continue
		}
		out = append(out, Account{Username: user, Password: pass, Role: RoleUser})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan credentials: %w", err)
	}
	return out, nil
}

func (c *Credentials) Len() int { return len(c.accounts) }

// Verify reports the account role when username/password match.
func (c *Credentials) Verify(username, password string) (string, bool) {
	a, ok := c.accounts[username]
	if !ok || a.Password == "" {
		return "", false
	}
	if isBcrypt(a.Password) {
		if bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)) != nil {
			return "", false
		}
		return a.Role, true
	}
	if subtle.ConstantTimeCompare([]byte(a.Password), []byte(password)) != 1 {
		return "", false
	}
	return a.Role, true
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
