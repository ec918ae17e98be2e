// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityCustomer                      // Any valid access token for the company
	SecurityStaff                         // Access token with the staff role
)

// RouteSecurityConfig maps HTTP route names to their required security level
var RouteSecurityConfig = map[string]SecurityLevel{
	// Catalogue - Public
	"Health":           SecurityPublic,
	"SearchAvailable":  SecurityPublic,
	"QuoteBooking":     SecurityPublic,
	"ValidateDiscount": SecurityPublic,

	// Presigned photo transfer - the URL itself carries the grant
	"StorageUpload":   SecurityPublic,
	"StorageDownload": SecurityPublic,

	// Bookings - Customer
	"CreateBooking":  SecurityCustomer,
	"GetBooking":     SecurityCustomer,
	"RequestPayment": SecurityCustomer,

	// Bookings - Staff
	"ListBookings":        SecurityStaff,
	"ConfirmBooking":      SecurityStaff,
	"StartRental":         SecurityStaff,
	"CompleteRental":      SecurityStaff,
	"CancelBooking":       SecurityStaff,
	"UpdateBookingStatus": SecurityStaff,
	"RecordPayment":       SecurityStaff,
	"GetPhotoUploadURL":   SecurityStaff,
	"GetPhotoDownloadURL": SecurityStaff,

	// Administration - Staff
	"SetPriceTiers":      SecurityStaff,
	"CreateDiscountCode": SecurityStaff,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := RouteSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown routes
	return SecurityStaff
}
