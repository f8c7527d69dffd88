package types

import "encoding/json"

// Identity identifies a participant on the shared log.
type Identity struct {
	DisplayName string `json:"nickname"`
	PublicKeyID string `json:"publicKeyId"`
	IsSynthetic bool   `json:"isAI,omitempty"`
}

// UnmarshalJSON also accepts the legacy "pubkey" field.
func (i *Identity) UnmarshalJSON(b []byte) error {
	var raw struct {
		DisplayName string `json:"nickname"`
		PublicKeyID string `json:"publicKeyId"`
		Pubkey      string `json:"pubkey"`
		IsSynthetic bool   `json:"isAI"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	i.DisplayName = raw.DisplayName
	i.PublicKeyID = raw.PublicKeyID
	if i.PublicKeyID == "" {
		i.PublicKeyID = raw.Pubkey
	}
	i.IsSynthetic = raw.IsSynthetic
	return nil
}

// Is reports whether both identities refer to the same key.
func (i Identity) Is(other Identity) bool {
	return i.PublicKeyID != "" && i.PublicKeyID == other.PublicKeyID
}

// SyntheticOpponent is the identity used for the AI when no peer is found.
var SyntheticOpponent = Identity{
	DisplayName: "Fortress AI",
	PublicKeyID: "ai_opponent_pubkey_system_id",
	IsSynthetic: true,
}
