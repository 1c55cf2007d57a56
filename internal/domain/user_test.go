package domain

import "testing"

func TestUserEnvelope_Variants(t *testing.T) {
	cases := []struct {
		name    string
		env     UserEnvelope
		id      int64
		display string
		ok      bool
	}{
		{"person", UserEnvelope{UserPerson: &UserPerson{ID: 1, DisplayName: "Jane"}}, 1, "Jane", true},
		{"company", UserEnvelope{UserCompany: &UserCompany{ID: 2, Name: "Acme B.V."}}, 2, "Acme B.V.", true},
		{"company display name", UserEnvelope{UserCompany: &UserCompany{ID: 2, Name: "Acme B.V.", DisplayName: "Acme"}}, 2, "Acme", true},
		{"api key", UserEnvelope{UserApiKey: &UserApiKey{ID: 3}}, 3, "", true},
		{"empty", UserEnvelope{}, 0, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := tc.env.UserID()
			if id != tc.id || ok != tc.ok {
				t.Fatalf("UserID() = %d, %v; want %d, %v", id, ok, tc.id, tc.ok)
			}
			p, ok := tc.env.Profile()
			if ok != tc.ok || p.ID != tc.id || p.DisplayName != tc.display {
				t.Fatalf("Profile() = %+v, %v", p, ok)
			}
		})
	}
}

func TestTokenEnvelope_User(t *testing.T) {
	env := TokenEnvelope{UserCompany: &UserCompany{ID: 9}}
	if id, ok := env.User().UserID(); !ok || id != 9 {
		t.Fatalf("expected company id 9, got %d %v", id, ok)
	}
	if _, ok := (TokenEnvelope{Token: &Token{Token: "t"}}).User().UserID(); ok {
		t.Fatalf("expected token element to carry no user")
	}
}
