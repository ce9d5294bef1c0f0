package vault

import "drivenpass/internal/model"

// Variant describes how one kind of secret maps its payload onto a
// SecretRecord.
type Variant[P any] struct {
	Kind  model.Kind
	Label string
	// Validate reports the first missing or malformed payload field.
	Validate func(P) error
	Encode   func(P, *model.SecretRecord)
	Decode   func(model.SecretRecord) P
}

type CredentialFields struct {
	URL      string `json:"url"`
	Username string `json:"username"`
}

type NetworkFields struct {
	Network string `json:"network"`
}

var Credentials = Variant[CredentialFields]{
	Kind:  model.KindCredential,
	Label: "credential",
	Validate: func(f CredentialFields) error {
		if f.URL == "" {
			return errRequired("url")
		}
		if f.Username == "" {
			return errRequired("username")
		}
		return nil
	},
	Encode: func(f CredentialFields, rec *model.SecretRecord) {
		rec.URL = f.URL
		rec.Username = f.Username
	},
	Decode: func(rec model.SecretRecord) CredentialFields {
		return CredentialFields{URL: rec.URL, Username: rec.Username}
	},
}

var Networks = Variant[NetworkFields]{
	Kind:  model.KindNetwork,
	Label: "network",
	Validate: func(f NetworkFields) error {
		if f.Network == "" {
			return errRequired("network")
		}
		return nil
	},
	Encode: func(f NetworkFields, rec *model.SecretRecord) {
		rec.Network = f.Network
	},
	Decode: func(rec model.SecretRecord) NetworkFields {
		return NetworkFields{Network: rec.Network}
	},
}
