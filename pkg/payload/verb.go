package payload

// Verb is the protocol command/response discriminator.
type Verb byte

// The closed verb set. COLOR..ERROR are wire vocabulary; a frame
// carries the two-letter code, not the Verb value itself.
const (
	Color Verb = iota // set status indicator color
	Stop              // stop all motors
	Go                // set speed of four motors
	Ack               // acknowledge message
	Nack              // fail to acknowledge
	Ping              // ping sanity check
	Request           // request motor controller status
	Response          // response to request
	Enable            // enable motor controller
	Disable           // disable motor controller
	Error             // send error code

	verbCount
)

var verbCodes = [verbCount][2]byte{
	{'C', 'O'}, {'S', 'T'}, {'G', 'O'}, {'A', 'K'}, {'N', 'K'},
	{'P', 'N'}, {'R', 'Q'}, {'R', 'P'}, {'E', 'N'}, {'D', 'I'},
	{'E', 'R'},
}

var verbDescriptions = [verbCount]string{
	"show color", "stop", "go", "acknowledge", "not acknowledge",
	"ping", "request status", "status response", "enable", "disable",
	"error",
}

// Code returns the two-letter wire code of the verb.
func (v Verb) Code() [2]byte {
	return verbCodes[v]
}

// Description returns a human readable description.
func (v Verb) Description() string {
	return verbDescriptions[v]
}

// String returns the wire code as a string.
func (v Verb) String() string {
	c := verbCodes[v]
	return string(c[:])
}

// VerbFromCode looks up a verb by its wire code.
func VerbFromCode(code [2]byte) (Verb, bool) {
	for v, c := range verbCodes {
		if c == code {
			return Verb(v), true
		}
	}
	return 0, false
}

// Status is the outcome reported by the motor controller.
type Status byte

// Status values.
const (
	StatusOkay Status = iota
	StatusFail
)

// OK indicates the operation succeeded.
func (s Status) OK() bool {
	return s == StatusOkay
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if s == StatusOkay {
		return "OKAY"
	}
	return "FAIL"
}
