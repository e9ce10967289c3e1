package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "Str0ng!pass" {
		t.Fatal("HashPassword() вернул пароль в открытом виде")
	}

	if !CheckPasswordHash("Str0ng!pass", hash) {
		t.Error("CheckPasswordHash() отклонил правильный пароль")
	}
	if CheckPasswordHash("wrong-pass", hash) {
		t.Error("CheckPasswordHash() принял неверный пароль")
	}
}

func TestIsPasswordComplex(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"Str0ng!pass", true},
		{"a1!bcdef", true},
		{"short1!", false},
		{"onlyletters", false},
		{"12345678!", false},
		{"letters123", false},
	}
	for _, tc := range cases {
		if got := IsPasswordComplex(tc.password); got != tc.want {
			t.Errorf("IsPasswordComplex(%q) = %v, want %v", tc.password, got, tc.want)
		}
	}
}

func TestIsValidUsername(t *testing.T) {
	cases := []struct {
		username string
		want     bool
	}{
		{"ivan", true},
		{"ivan.petrov-99_x", true},
		{"иван", false},
		{"ivan petrov", false},
		{"ivan@home", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValidUsername(tc.username); got != tc.want {
			t.Errorf("IsValidUsername(%q) = %v, want %v", tc.username, got, tc.want)
		}
	}
}
