package services

// shipmentMethodMap translates Cannon Hill shipping abbreviations into the
// canonical Orderdesk method names.
var shipmentMethodMap = map[string]string{
	"G":   "Ground",
	"3RD": "3 Day Select",
	"2ND": "2nd Day Air",
}

// storeIDMap translates Cannon Hill customer numbers into Orderdesk store ids.
var storeIDMap = map[string]string{
	"RTSCS": "68125",
	"RTFMS": "118741",
	"HERO":  "14077",
}

// MapShipmentMethod resolves a vendor method abbreviation; unmapped values
// pass through unchanged.
func MapShipmentMethod(method string) string {
	if mapped, ok := shipmentMethodMap[method]; ok {
		return mapped
	}
	return method
}

// MapStoreID resolves a vendor customer number to a store id; unmapped codes
// pass through unchanged.
func MapStoreID(customerNumber string) string {
	if mapped, ok := storeIDMap[customerNumber]; ok {
		return mapped
	}
	return customerNumber
}
