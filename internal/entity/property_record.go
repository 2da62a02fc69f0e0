package entity

import "github.com/joseph-ayodele/lease-extractor/constants"

// AddressData is the nested address block of a PropertyRecord.
type AddressData struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	Country       string `json:"country"`
	FullAddress   string `json:"fullAddress"`
	HouseNumber   string `json:"houseNumber"`
	StreetName    string `json:"streetName"`
}

// PropertyRecord is the shape the mobile client consumes. Every value is a string,
// including numbers and yes/no flags; an absent value is "".
type PropertyRecord struct {
	AddressData AddressData `json:"addressData"`

	Rooms            string `json:"rooms"`
	SquareMeters     string `json:"squareMeters"`
	YearBuilt        string `json:"yearBuilt"`
	Floor            string `json:"floor"`
	ApartmentNumber  string `json:"apartmentNumber"`
	HeatingType      string `json:"heatingType"`
	Bathroom         string `json:"bathroom"`
	Balcony          string `json:"balcony"`
	Garden           string `json:"garden"`
	Parking          string `json:"parking"`
	IsOccupied       string `json:"isOccupied"`
	IsCommercialUnit string `json:"isCommercialUnit"`

	TenantSurname   string `json:"tenantSurname"`
	TenantName      string `json:"tenantName"`
	TenantEmail     string `json:"tenantEmail"`
	TenantPhone     string `json:"tenantPhone"`
	TenantIsMarried string `json:"tenantIsMarried"`
	TenantIDNumber  string `json:"tenantIdNumber"`

	ContractStart     string `json:"contractStart"`
	ContractEnd       string `json:"contractEnd"`
	RentAmount        string `json:"rentAmount"`
	RentWithUtilities string `json:"rentWithUtilities"`
	CostOfUtilities   string `json:"costOfUtilities"`
	DepositAmount     string `json:"depositAmount"`
	RentDueDay        string `json:"rentDueDay"`
	LastRentIncrease  string `json:"lastRentIncrease"`
	IsActive          string `json:"isActive"`
}

// EmptyRecord is returned when extraction fails outright. isActive stays "".
func EmptyRecord() PropertyRecord {
	return PropertyRecord{}
}

// FallbackRecord is the starting point for regex salvage: empty except the default country.
func FallbackRecord() PropertyRecord {
	r := PropertyRecord{}
	r.AddressData.Country = constants.DefaultCountry
	return r
}

// TemplateRecord is the empty-valued target the model is asked to fill in.
func TemplateRecord() PropertyRecord {
	r := FallbackRecord()
	r.IsActive = "true"
	return r
}

// AddressFields lists addressData keys in wire order.
var AddressFields = []string{
	"streetAddress", "city", "state", "zipCode", "country", "fullAddress", "houseNumber", "streetName",
}

// RecordFields lists the top-level string keys in wire order (addressData excluded).
var RecordFields = []string{
	"rooms", "squareMeters", "yearBuilt", "floor", "apartmentNumber", "heatingType",
	"bathroom", "balcony", "garden", "parking", "isOccupied", "isCommercialUnit",
	"tenantSurname", "tenantName", "tenantEmail", "tenantPhone", "tenantIsMarried", "tenantIdNumber",
	"contractStart", "contractEnd", "rentAmount", "rentWithUtilities", "costOfUtilities",
	"depositAmount", "rentDueDay", "lastRentIncrease", "isActive",
}
