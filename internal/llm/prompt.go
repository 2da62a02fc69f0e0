package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/lease-extractor/internal/entity"
)

// SystemPrompt frames the model as a property data extractor.
const SystemPrompt = "You are an expert property data extractor. " +
	"Analyze the provided OCR text and extract ALL relevant property information. " +
	"Return a valid JSON object with the exact Flutter-compatible format including: " +
	"addressData (with streetAddress, city, state, zipCode, country, fullAddress, houseNumber, streetName) " +
	"and all property fields (rooms, squareMeters, yearBuilt, floor, apartmentNumber, etc.)"

// ExampleLease is the worked example embedded in every prompt.
const ExampleLease = `Residential Rental Agreement

This Rental Agreement is made on January 1, 2024, by and between the landlord and the tenant, whose information is provided below.

Property Details
The rented premises is located at 123 Maple Street, Apt. 4B, Springfield, IL 62704, USA. The property consists of 3 rooms with a total area of 85 square meters. It was built in the year 2005, and the apartment is situated on the 2nd floor, apartment number 4B.

The unit includes central heating, 1 bathroom, 1 balcony, and access to a private garden. Additionally, private parking is available. The unit is currently occupied and designated as a residential property (not a commercial unit).

Tenant Information
The tenant, John Doe, residing at the aforementioned property, is married and can be contacted at:

Phone: +1 (555) 123-4567

Email: john.doe@example.com

ID Number: A123456789

Lease Terms
Contract Start Date: January 1, 2024

Contract End Date: December 31, 2024

Monthly Rent Amount: $1,200.00

Rent with Utilities: $1,450.00

Cost of Utilities: $250.00

Security Deposit: $1,200.00

Rent Due Date: 1st of each month

Last Rent Increase: January 1, 2024

The property is active and under a valid rental contract as of the date above.

Agreement
By signing this agreement, both parties agree to the terms and conditions laid out regarding the use, care, and rental payment obligations for the above-mentioned property.`

// ExampleRecord is the expected output for ExampleLease.
func ExampleRecord() entity.PropertyRecord {
	return entity.PropertyRecord{
		AddressData: entity.AddressData{
			StreetAddress: "123 Maple Street",
			City:          "Springfield",
			State:         "IL",
			ZipCode:       "62704",
			Country:       "USA",
			FullAddress:   "123 Maple Street, Apt. 4B, Springfield, IL 62704, USA",
			HouseNumber:   "123",
			StreetName:    "Maple Street",
		},
		Rooms:             "3",
		SquareMeters:      "85",
		YearBuilt:         "2005",
		Floor:             "2",
		ApartmentNumber:   "4B",
		HeatingType:       "central",
		Bathroom:          "1",
		Balcony:           "1",
		Garden:            "true",
		Parking:           "true",
		IsOccupied:        "true",
		IsCommercialUnit:  "false",
		TenantSurname:     "Doe",
		TenantName:        "John",
		TenantEmail:       "john.doe@example.com",
		TenantPhone:       "+1 (555) 123-4567",
		TenantIsMarried:   "true",
		TenantIDNumber:    "A123456789",
		ContractStart:     "January 1, 2024",
		ContractEnd:       "December 31, 2024",
		RentAmount:        "1200.00",
		RentWithUtilities: "1450.00",
		CostOfUtilities:   "250.00",
		DepositAmount:     "1200.00",
		RentDueDay:        "1",
		LastRentIncrease:  "January 1, 2024",
		IsActive:          "true",
	}
}

// BuildUserPrompt embeds the OCR text, the worked example with its output, and the
// empty-valued target the model must fill in.
func BuildUserPrompt(ocrText string) string {
	var b strings.Builder
	b.WriteString("Extract ALL address and property information from this OCR text:\n\n")
	b.WriteString(ocrText)
	b.WriteString("\n\n---\nExample OCR text:\n\n")
	b.WriteString(ExampleLease)
	b.WriteString("\n\nExample output:\n")
	b.WriteString(mustIndent(ExampleRecord()))
	b.WriteString("\n---\n\nReturn a JSON object with this exact Flutter-compatible format:\n")
	b.WriteString(mustIndent(entity.TemplateRecord()))
	b.WriteString("\n\nExtract whatever information is available from the OCR text, even if some fields are missing. ")
	b.WriteString("Convert any numbers or measurements to string format.\n")
	return b.String()
}

// BuildRequest is the full prompt for one extraction.
func BuildRequest(ocrText string) CompletionRequest {
	return CompletionRequest{
		System: SystemPrompt,
		User:   BuildUserPrompt(ocrText),
	}
}

func mustIndent(v any) string {
	b, _ := json.MarshalIndent(v, "", "    ")
	return string(b)
}
