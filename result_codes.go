package lillydap

import "fmt"

// ResultCode mirrors RFC 4511 section 4.1.9's enumerated result codes.
// Kept as its own named type (rather than reused from go-ldap/v3, whose
// LDAPResultCode constants are untyped ints) so LDAPResult.ResultCode has
// a String method and so callers get compile-time help picking a valid
// code; values are still exactly the RFC/go-ldap numbering.
type ResultCode int

const (
	ResultSuccess                      ResultCode = 0
	ResultOperationsError              ResultCode = 1
	ResultProtocolError                ResultCode = 2
	ResultTimeLimitExceeded            ResultCode = 3
	ResultSizeLimitExceeded            ResultCode = 4
	ResultCompareFalse                 ResultCode = 5
	ResultCompareTrue                  ResultCode = 6
	ResultAuthMethodNotSupported       ResultCode = 7
	ResultStrongerAuthRequired         ResultCode = 8
	ResultReferral                     ResultCode = 10
	ResultAdminLimitExceeded           ResultCode = 11
	ResultUnavailableCriticalExtension ResultCode = 12
	ResultConfidentialityRequired      ResultCode = 13
	ResultSaslBindInProgress           ResultCode = 14
	ResultNoSuchAttribute              ResultCode = 16
	ResultUndefinedAttributeType       ResultCode = 17
	ResultInappropriateMatching        ResultCode = 18
	ResultConstraintViolation          ResultCode = 19
	ResultAttributeOrValueExists       ResultCode = 20
	ResultInvalidAttributeSyntax       ResultCode = 21
	ResultNoSuchObject                 ResultCode = 32
	ResultAliasProblem                 ResultCode = 33
	ResultInvalidDNSyntax              ResultCode = 34
	ResultAliasDereferencingProblem    ResultCode = 36
	ResultInappropriateAuthentication  ResultCode = 48
	ResultInvalidCredentials           ResultCode = 49
	ResultInsufficientAccessRights     ResultCode = 50
	ResultBusy                         ResultCode = 51
	ResultUnavailable                  ResultCode = 52
	ResultUnwillingToPerform           ResultCode = 53
	ResultLoopDetect                   ResultCode = 54
	ResultNamingViolation              ResultCode = 64
	ResultObjectClassViolation         ResultCode = 65
	ResultNotAllowedOnNonLeaf          ResultCode = 66
	ResultNotAllowedOnRDN              ResultCode = 67
	ResultEntryAlreadyExists           ResultCode = 68
	ResultObjectClassModsProhibited    ResultCode = 69
	ResultAffectsMultipleDSAs          ResultCode = 71
	ResultOther                        ResultCode = 80
	// ResultCanceled through ResultCannotCancel are RFC 3909 additions,
	// used by the Cancel extended operation.
	ResultCanceled          ResultCode = 118
	ResultNoSuchOperation   ResultCode = 119
	ResultTooLate           ResultCode = 120
	ResultCannotCancel      ResultCode = 121
)

var resultCodeNames = map[ResultCode]string{
	ResultSuccess: "Success", ResultOperationsError: "OperationsError",
	ResultProtocolError: "ProtocolError", ResultTimeLimitExceeded: "TimeLimitExceeded",
	ResultSizeLimitExceeded: "SizeLimitExceeded", ResultCompareFalse: "CompareFalse",
	ResultCompareTrue: "CompareTrue", ResultAuthMethodNotSupported: "AuthMethodNotSupported",
	ResultStrongerAuthRequired: "StrongerAuthRequired", ResultReferral: "Referral",
	ResultAdminLimitExceeded: "AdminLimitExceeded", ResultUnavailableCriticalExtension: "UnavailableCriticalExtension",
	ResultConfidentialityRequired: "ConfidentialityRequired", ResultSaslBindInProgress: "SaslBindInProgress",
	ResultNoSuchAttribute: "NoSuchAttribute", ResultUndefinedAttributeType: "UndefinedAttributeType",
	ResultInappropriateMatching: "InappropriateMatching", ResultConstraintViolation: "ConstraintViolation",
	ResultAttributeOrValueExists: "AttributeOrValueExists", ResultInvalidAttributeSyntax: "InvalidAttributeSyntax",
	ResultNoSuchObject: "NoSuchObject", ResultAliasProblem: "AliasProblem",
	ResultInvalidDNSyntax: "InvalidDNSyntax", ResultAliasDereferencingProblem: "AliasDereferencingProblem",
	ResultInappropriateAuthentication: "InappropriateAuthentication", ResultInvalidCredentials: "InvalidCredentials",
	ResultInsufficientAccessRights: "InsufficientAccessRights", ResultBusy: "Busy",
	ResultUnavailable: "Unavailable", ResultUnwillingToPerform: "UnwillingToPerform",
	ResultLoopDetect: "LoopDetect", ResultNamingViolation: "NamingViolation",
	ResultObjectClassViolation: "ObjectClassViolation", ResultNotAllowedOnNonLeaf: "NotAllowedOnNonLeaf",
	ResultNotAllowedOnRDN: "NotAllowedOnRDN", ResultEntryAlreadyExists: "EntryAlreadyExists",
	ResultObjectClassModsProhibited: "ObjectClassModsProhibited", ResultAffectsMultipleDSAs: "AffectsMultipleDSAs",
	ResultOther: "Other", ResultCanceled: "Canceled", ResultNoSuchOperation: "NoSuchOperation",
	ResultTooLate: "TooLate", ResultCannotCancel: "CannotCancel",
}

func (r ResultCode) String() string {
	if s, ok := resultCodeNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Unknown(%d)", int(r))
}

func successResult() LDAPResult { return LDAPResult{ResultCode: ResultSuccess} }

func errorResult(code ResultCode, message string) LDAPResult {
	return LDAPResult{ResultCode: code, DiagnosticMessage: message}
}
