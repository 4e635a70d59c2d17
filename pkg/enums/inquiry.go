package enums

import "fmt"

// InquiryKind distinguishes the two storefront intake forms.
type InquiryKind string

const (
	InquiryKindCustomDesign InquiryKind = "custom_design"
	InquiryKindBulkOrder    InquiryKind = "bulk_order"
)

var validInquiryKinds = []InquiryKind{
	InquiryKindCustomDesign,
	InquiryKindBulkOrder,
}

// String implements fmt.Stringer.
func (k InquiryKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known InquiryKind.
func (k InquiryKind) IsValid() bool {
	for _, candidate := range validInquiryKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseInquiryKind converts raw input into an InquiryKind.
func ParseInquiryKind(value string) (InquiryKind, error) {
	for _, candidate := range validInquiryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inquiry kind %q", value)
}
