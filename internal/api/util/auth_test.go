package util

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken("s3cret", "surveyor-1", time.Minute)
	if err != nil {
		t.Fatalf("IssueToken() unexpected error: %v", err)
	}

	claims, err := ParseToken("s3cret", token)
	if err != nil {
		t.Fatalf("ParseToken() unexpected error: %v", err)
	}
	if claims.Subject != "surveyor-1" {
		t.Errorf("Subject = %q, want surveyor-1", claims.Subject)
	}

	if _, err := ParseToken("other", token); err == nil {
		t.Error("ParseToken() accepted a token signed with another secret")
	}

	expired, _ := IssueToken("s3cret", "surveyor-1", -time.Minute)
	if _, err := ParseToken("s3cret", expired); err == nil {
		t.Error("ParseToken() accepted an expired token")
	}
}

func TestGetBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"missing", "", "", ErrMissingToken},
		{"basic scheme", "Basic abc", "", ErrMalformedToken},
		{"empty bearer", "Bearer ", "", ErrMalformedToken},
		{"bearer", "Bearer abc.def", "abc.def", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := GetBearerToken(r)
			if !errors.Is(err, tt.wantErr) || got != tt.want {
				t.Errorf("GetBearerToken() = (%q, %v), want (%q, %v)", got, err, tt.want, tt.wantErr)
			}
		})
	}
}
