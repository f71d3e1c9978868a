package proposal

// RiskTier is the customer risk classification returned by the external
// fraud-analysis service. The tier is an opaque input here; scoring itself
// happens outside this context.
type RiskTier string

const (
	RiskTierRegular       RiskTier = "REGULAR"
	RiskTierHighRisk      RiskTier = "HIGH_RISK"
	RiskTierPreferential  RiskTier = "PREFERENTIAL"
	RiskTierNoInformation RiskTier = "NO_INFORMATION"
)

// IsValid checks if the tier is a known RiskTier
func (r RiskTier) IsValid() bool {
	switch r {
	case RiskTierRegular, RiskTierHighRisk, RiskTierPreferential, RiskTierNoInformation:
		return true
	}
	return false
}

// String returns the string representation of RiskTier
func (r RiskTier) String() string {
	return string(r)
}

// Category is the insurance line a proposal belongs to
type Category string

const (
	CategoryAuto        Category = "AUTO"
	CategoryLife        Category = "LIFE"
	CategoryResidential Category = "RESIDENTIAL"
	CategoryBusiness    Category = "BUSINESS"
	CategoryOther       Category = "OTHER"
)

// IsValid checks if the category is a known Category
func (c Category) IsValid() bool {
	switch c {
	case CategoryAuto, CategoryLife, CategoryResidential, CategoryBusiness, CategoryOther:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// SalesChannel identifies where the proposal was taken
type SalesChannel string

const (
	ChannelMobile    SalesChannel = "MOBILE"
	ChannelWhatsApp  SalesChannel = "WHATSAPP"
	ChannelWebsite   SalesChannel = "WEBSITE"
	ChannelBranch    SalesChannel = "BRANCH"
	ChannelTelephone SalesChannel = "TELEPHONE"
)

// IsValid checks if the channel is a known SalesChannel
func (s SalesChannel) IsValid() bool {
	switch s {
	case ChannelMobile, ChannelWhatsApp, ChannelWebsite, ChannelBranch, ChannelTelephone:
		return true
	}
	return false
}

// String returns the string representation of SalesChannel
func (s SalesChannel) String() string {
	return string(s)
}

// PaymentMethod identifies how the customer intends to pay the premium
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentDebitAccount PaymentMethod = "DEBIT_ACCOUNT"
	PaymentBoleto       PaymentMethod = "BOLETO"
	PaymentPix          PaymentMethod = "PIX"
)

// IsValid checks if the method is a known PaymentMethod
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCreditCard, PaymentDebitAccount, PaymentBoleto, PaymentPix:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (p PaymentMethod) String() string {
	return string(p)
}
