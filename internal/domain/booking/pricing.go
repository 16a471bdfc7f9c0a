package booking

// HomeCollectionFee is the flat surcharge, in rupees, added when the sample
// is collected at the patient's home.
const HomeCollectionFee = 100

// ComputeTotal returns the amount payable for a booking: the catalog price of
// the test plus the home collection surcharge when applicable.
func ComputeTotal(testPrice int, sampleType SampleType) int {
	if sampleType == SampleHome {
		return testPrice + HomeCollectionFee
	}
	return testPrice
}
