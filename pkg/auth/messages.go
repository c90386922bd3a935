package auth

// Numbers are big-endian unsigned integers of arbitrary length.

// RegisterRequest publishes the commitments y₁ = αˣ and y₂ = βˣ of a secret x.
type RegisterRequest struct {
	Identity string `cbor:"identity" json:"identity"`
	Y1       []byte `cbor:"y1" json:"y1"`
	Y2       []byte `cbor:"y2" json:"y2"`
}

type RegisterResponse struct{}

// ChallengeRequest carries the ephemeral commitments r₁ = αᵏ and r₂ = βᵏ.
type ChallengeRequest struct {
	Identity string `cbor:"identity" json:"identity"`
	R1       []byte `cbor:"r1" json:"r1"`
	R2       []byte `cbor:"r2" json:"r2"`
}

// ChallengeResponse binds the challenge c to a fresh attempt id.
type ChallengeResponse struct {
	AttemptID string `cbor:"attempt_id" json:"attempt_id"`
	C         []byte `cbor:"c" json:"c"`
}

// VerifyRequest answers the challenge of an attempt with s = k - c⋅x (mod q).
type VerifyRequest struct {
	AttemptID string `cbor:"attempt_id" json:"attempt_id"`
	S         []byte `cbor:"s" json:"s"`
}

type VerifyResponse struct {
	SessionToken string `cbor:"session_token" json:"session_token"`
}

// ParametersResponse publishes the group both parties compute in.
type ParametersResponse struct {
	P     []byte `cbor:"p" json:"p"`
	Q     []byte `cbor:"q" json:"q"`
	Alpha []byte `cbor:"alpha" json:"alpha"`
	Beta  []byte `cbor:"beta" json:"beta"`
}

// GenericError is the body of every failed request.
type GenericError struct {
	Error string `cbor:"error" json:"error"`
}
