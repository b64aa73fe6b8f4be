package domain

// CategoryID identifies one of the fixed funding categories.
type CategoryID string

const (
	CategoryParksRecreation      CategoryID = "Parks & Recreation"
	CategoryYouthCenters         CategoryID = "Community Youth Centers"
	CategoryAffordableHousing    CategoryID = "Affordable Housing"
	CategoryPublicTransit        CategoryID = "Public Transit"
	CategorySmallBusiness        CategoryID = "Small Business Support"
	CategoryMentalHealthServices CategoryID = "Mental Health Services"
)

// DefaultCategory is returned by the classifier when no keyword matches.
const DefaultCategory = CategoryParksRecreation

// CategoryRule binds a category to its matching keywords. Rule order is the
// classification priority order: the first rule with a matching keyword wins,
// so changing the order changes classification results.
type CategoryRule struct {
	Category CategoryID
	Keywords []string
}

// CategoryRules is the fixed, ordered keyword rule set used for classifying
// vision text into funding categories.
var CategoryRules = []CategoryRule{
	{CategoryParksRecreation, []string{"park", "garden", "playground", "recreation", "outdoor", "green space", "trail", "beach"}},
	{CategoryYouthCenters, []string{"youth", "teen", "after school", "mentorship", "education", "children", "kids"}},
	{CategoryAffordableHousing, []string{"housing", "affordable", "homeless", "shelter", "apartment", "rent", "home"}},
	{CategoryPublicTransit, []string{"bus", "train", "transit", "transportation", "bart", "muni", "bike", "pedestrian"}},
	{CategorySmallBusiness, []string{"business", "entrepreneur", "shop", "restaurant", "startup", "commerce", "market"}},
	{CategoryMentalHealthServices, []string{"mental health", "wellness", "therapy", "counseling", "crisis", "support", "healthcare"}},
}

// FundingCategory holds the city budget metadata for one funding category.
type FundingCategory struct {
	CategoryName             CategoryID `json:"category_name"`
	TotalBudget              int64      `json:"total_budget"`
	DirectFunding            int64      `json:"direct_funding"`
	NonprofitFunding         int64      `json:"nonprofit_funding"`
	BudgetDeficit            int64      `json:"budget_deficit"`
	RemainingApprovedFunding int64      `json:"remaining_approved_funding"`
	ImpactMetrics            []string   `json:"impact_metrics"`
}

// FundingCategories lists all funding categories in their fixed priority
// order, with San Francisco sample budget data.
var FundingCategories = []FundingCategory{
	{
		CategoryName:             CategoryParksRecreation,
		TotalBudget:              450000000,
		DirectFunding:            320000000,
		NonprofitFunding:         80000000,
		BudgetDeficit:            50000000,
		RemainingApprovedFunding: 15000000,
		ImpactMetrics:            []string{"500+ parks maintained", "12 new playgrounds", "200k annual visitors"},
	},
	{
		CategoryName:             CategoryYouthCenters,
		TotalBudget:              280000000,
		DirectFunding:            200000000,
		NonprofitFunding:         60000000,
		BudgetDeficit:            20000000,
		RemainingApprovedFunding: 8000000,
		ImpactMetrics:            []string{"50 youth centers", "10k daily participants", "95% satisfaction rate"},
	},
	{
		CategoryName:             CategoryAffordableHousing,
		TotalBudget:              850000000,
		DirectFunding:            600000000,
		NonprofitFunding:         150000000,
		BudgetDeficit:            100000000,
		RemainingApprovedFunding: 25000000,
		ImpactMetrics:            []string{"2,500 units planned", "1,200 units completed", "5k families housed"},
	},
	{
		CategoryName:             CategoryPublicTransit,
		TotalBudget:              1200000000,
		DirectFunding:            900000000,
		NonprofitFunding:         200000000,
		BudgetDeficit:            100000000,
		RemainingApprovedFunding: 30000000,
		ImpactMetrics:            []string{"800k daily riders", "15 new bus routes", "98% on-time performance"},
	},
	{
		CategoryName:             CategorySmallBusiness,
		TotalBudget:              180000000,
		DirectFunding:            120000000,
		NonprofitFunding:         50000000,
		BudgetDeficit:            10000000,
		RemainingApprovedFunding: 5000000,
		ImpactMetrics:            []string{"2k businesses supported", "8k jobs created", "85% survival rate"},
	},
	{
		CategoryName:             CategoryMentalHealthServices,
		TotalBudget:              320000000,
		DirectFunding:            240000000,
		NonprofitFunding:         70000000,
		BudgetDeficit:            10000000,
		RemainingApprovedFunding: 12000000,
		ImpactMetrics:            []string{"100k residents served", "24/7 crisis hotline", "30 wellness centers"},
	},
}

// CategoryOrder returns the category IDs in their fixed priority order.
// Parameters: none.
// Returns:
//   - []CategoryID: ordered category identifiers.
func CategoryOrder() []CategoryID {
	out := make([]CategoryID, len(FundingCategories))
	for i, fc := range FundingCategories {
		out[i] = fc.CategoryName
	}
	return out
}
