package catalog

import "stockSim/internal/domain"

// stockTable is the built-in reference data, grouped by sector.
var stockTable = []domain.Stock{
	// Technology
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 178.72, Change: 2.34, ChangePercent: 1.33, Volume: 54000000, MarketCap: 2800000000000, Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Price: 378.91, Change: 4.21, ChangePercent: 1.12, Volume: 22000000, MarketCap: 2810000000000, Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 141.80, Change: 1.45, ChangePercent: 1.03, Volume: 25000000, MarketCap: 1780000000000, Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 178.25, Change: 3.12, ChangePercent: 1.78, Volume: 45000000, MarketCap: 1850000000000, Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "META", Name: "Meta Platforms Inc.", Price: 505.95, Change: 8.45, ChangePercent: 1.70, Volume: 18000000, MarketCap: 1300000000000, Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Price: 875.35, Change: 15.67, ChangePercent: 1.82, Volume: 42000000, MarketCap: 2160000000000, Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Price: 248.50, Change: -5.30, ChangePercent: -2.09, Volume: 95000000, MarketCap: 790000000000, Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "AMD", Name: "Advanced Micro Devices", Price: 178.25, Change: 3.45, ChangePercent: 1.97, Volume: 55000000, MarketCap: 288000000000, Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "INTC", Name: "Intel Corporation", Price: 43.25, Change: -0.85, ChangePercent: -1.93, Volume: 35000000, MarketCap: 182000000000, Sector: "Technology", Exchange: "NASDAQ"},
	{Symbol: "CRM", Name: "Salesforce Inc.", Price: 272.80, Change: 4.15, ChangePercent: 1.54, Volume: 5500000, MarketCap: 264000000000, Sector: "Technology", Exchange: "NYSE"},
	{Symbol: "ORCL", Name: "Oracle Corporation", Price: 125.40, Change: 1.85, ChangePercent: 1.50, Volume: 8000000, MarketCap: 345000000000, Sector: "Technology", Exchange: "NYSE"},
	{Symbol: "ADBE", Name: "Adobe Inc.", Price: 575.30, Change: 8.20, ChangePercent: 1.45, Volume: 3200000, MarketCap: 258000000000, Sector: "Technology", Exchange: "NASDAQ"},

	// Financial
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Price: 195.40, Change: 2.30, ChangePercent: 1.19, Volume: 9500000, MarketCap: 565000000000, Sector: "Financial", Exchange: "NYSE"},
	{Symbol: "BAC", Name: "Bank of America Corp", Price: 33.85, Change: 0.45, ChangePercent: 1.35, Volume: 35000000, MarketCap: 268000000000, Sector: "Financial", Exchange: "NYSE"},
	{Symbol: "WFC", Name: "Wells Fargo & Co", Price: 52.30, Change: 0.78, ChangePercent: 1.51, Volume: 18000000, MarketCap: 188000000000, Sector: "Financial", Exchange: "NYSE"},
	{Symbol: "GS", Name: "Goldman Sachs Group", Price: 385.20, Change: 5.45, ChangePercent: 1.44, Volume: 2500000, MarketCap: 125000000000, Sector: "Financial", Exchange: "NYSE"},
	{Symbol: "MS", Name: "Morgan Stanley", Price: 92.75, Change: 1.25, ChangePercent: 1.37, Volume: 8000000, MarketCap: 152000000000, Sector: "Financial", Exchange: "NYSE"},
	{Symbol: "V", Name: "Visa Inc.", Price: 279.50, Change: 3.80, ChangePercent: 1.38, Volume: 7500000, MarketCap: 572000000000, Sector: "Financial", Exchange: "NYSE"},
	{Symbol: "MA", Name: "Mastercard Inc.", Price: 458.90, Change: 5.65, ChangePercent: 1.25, Volume: 3200000, MarketCap: 428000000000, Sector: "Financial", Exchange: "NYSE"},

	// Healthcare
	{Symbol: "JNJ", Name: "Johnson & Johnson", Price: 158.45, Change: 1.20, ChangePercent: 0.76, Volume: 7500000, MarketCap: 382000000000, Sector: "Healthcare", Exchange: "NYSE"},
	{Symbol: "UNH", Name: "UnitedHealth Group", Price: 528.30, Change: 6.45, ChangePercent: 1.24, Volume: 3800000, MarketCap: 488000000000, Sector: "Healthcare", Exchange: "NYSE"},
	{Symbol: "PFE", Name: "Pfizer Inc.", Price: 28.75, Change: -0.35, ChangePercent: -1.20, Volume: 42000000, MarketCap: 162000000000, Sector: "Healthcare", Exchange: "NYSE"},
	{Symbol: "ABBV", Name: "AbbVie Inc.", Price: 162.80, Change: 2.15, ChangePercent: 1.34, Volume: 6500000, MarketCap: 287000000000, Sector: "Healthcare", Exchange: "NYSE"},
	{Symbol: "MRK", Name: "Merck & Co.", Price: 118.50, Change: 1.45, ChangePercent: 1.24, Volume: 8200000, MarketCap: 300000000000, Sector: "Healthcare", Exchange: "NYSE"},
	{Symbol: "LLY", Name: "Eli Lilly and Co.", Price: 752.40, Change: 12.30, ChangePercent: 1.66, Volume: 3500000, MarketCap: 715000000000, Sector: "Healthcare", Exchange: "NYSE"},

	// Consumer
	{Symbol: "WMT", Name: "Walmart Inc.", Price: 165.80, Change: 1.95, ChangePercent: 1.19, Volume: 8500000, MarketCap: 446000000000, Sector: "Consumer", Exchange: "NYSE"},
	{Symbol: "PG", Name: "Procter & Gamble", Price: 158.25, Change: 1.30, ChangePercent: 0.83, Volume: 6800000, MarketCap: 372000000000, Sector: "Consumer", Exchange: "NYSE"},
	{Symbol: "KO", Name: "Coca-Cola Company", Price: 59.80, Change: 0.45, ChangePercent: 0.76, Volume: 12000000, MarketCap: 258000000000, Sector: "Consumer", Exchange: "NYSE"},
	{Symbol: "PEP", Name: "PepsiCo Inc.", Price: 172.50, Change: 1.85, ChangePercent: 1.08, Volume: 5500000, MarketCap: 237000000000, Sector: "Consumer", Exchange: "NASDAQ"},
	{Symbol: "COST", Name: "Costco Wholesale", Price: 725.60, Change: 8.45, ChangePercent: 1.18, Volume: 2200000, MarketCap: 322000000000, Sector: "Consumer", Exchange: "NASDAQ"},
	{Symbol: "MCD", Name: "McDonald's Corporation", Price: 295.40, Change: 3.25, ChangePercent: 1.11, Volume: 3500000, MarketCap: 214000000000, Sector: "Consumer", Exchange: "NYSE"},
	{Symbol: "NKE", Name: "Nike Inc.", Price: 98.75, Change: 1.45, ChangePercent: 1.49, Volume: 8500000, MarketCap: 149000000000, Sector: "Consumer", Exchange: "NYSE"},
	{Symbol: "SBUX", Name: "Starbucks Corporation", Price: 92.30, Change: 1.15, ChangePercent: 1.26, Volume: 7800000, MarketCap: 105000000000, Sector: "Consumer", Exchange: "NASDAQ"},

	// Energy
	{Symbol: "XOM", Name: "Exxon Mobil Corp", Price: 104.25, Change: 1.55, ChangePercent: 1.51, Volume: 15000000, MarketCap: 416000000000, Sector: "Energy", Exchange: "NYSE"},
	{Symbol: "CVX", Name: "Chevron Corporation", Price: 152.80, Change: 2.15, ChangePercent: 1.43, Volume: 8500000, MarketCap: 285000000000, Sector: "Energy", Exchange: "NYSE"},
	{Symbol: "COP", Name: "ConocoPhillips", Price: 115.40, Change: 1.85, ChangePercent: 1.63, Volume: 6200000, MarketCap: 135000000000, Sector: "Energy", Exchange: "NYSE"},

	// Industrial
	{Symbol: "CAT", Name: "Caterpillar Inc.", Price: 335.20, Change: 4.75, ChangePercent: 1.44, Volume: 2800000, MarketCap: 168000000000, Sector: "Industrial", Exchange: "NYSE"},
	{Symbol: "BA", Name: "Boeing Company", Price: 208.45, Change: 3.25, ChangePercent: 1.58, Volume: 5500000, MarketCap: 125000000000, Sector: "Industrial", Exchange: "NYSE"},
	{Symbol: "GE", Name: "General Electric", Price: 158.90, Change: 2.45, ChangePercent: 1.57, Volume: 6800000, MarketCap: 172000000000, Sector: "Industrial", Exchange: "NYSE"},
	{Symbol: "UPS", Name: "United Parcel Service", Price: 148.75, Change: 1.95, ChangePercent: 1.33, Volume: 3200000, MarketCap: 128000000000, Sector: "Industrial", Exchange: "NYSE"},
	{Symbol: "HON", Name: "Honeywell International", Price: 202.30, Change: 2.85, ChangePercent: 1.43, Volume: 2500000, MarketCap: 134000000000, Sector: "Industrial", Exchange: "NASDAQ"},

	// ETFs
	{Symbol: "SPY", Name: "SPDR S&P 500 ETF", Price: 502.45, Change: 4.85, ChangePercent: 0.98, Volume: 75000000, MarketCap: 450000000000, Sector: "ETF", Exchange: "NYSE"},
	{Symbol: "QQQ", Name: "Invesco QQQ Trust", Price: 438.20, Change: 5.65, ChangePercent: 1.31, Volume: 45000000, MarketCap: 215000000000, Sector: "ETF", Exchange: "NASDAQ"},
	{Symbol: "IWM", Name: "iShares Russell 2000", Price: 198.75, Change: 2.45, ChangePercent: 1.25, Volume: 28000000, MarketCap: 58000000000, Sector: "ETF", Exchange: "NYSE"},
	{Symbol: "DIA", Name: "SPDR Dow Jones ETF", Price: 388.50, Change: 3.25, ChangePercent: 0.84, Volume: 3500000, MarketCap: 32000000000, Sector: "ETF", Exchange: "NYSE"},
	{Symbol: "VTI", Name: "Vanguard Total Stock", Price: 258.90, Change: 2.55, ChangePercent: 1.00, Volume: 4200000, MarketCap: 380000000000, Sector: "ETF", Exchange: "NYSE"},
	{Symbol: "VOO", Name: "Vanguard S&P 500 ETF", Price: 462.15, Change: 4.45, ChangePercent: 0.97, Volume: 5800000, MarketCap: 420000000000, Sector: "ETF", Exchange: "NYSE"},

	// Communication
	{Symbol: "DIS", Name: "Walt Disney Company", Price: 112.45, Change: 1.85, ChangePercent: 1.67, Volume: 12000000, MarketCap: 206000000000, Sector: "Communication", Exchange: "NYSE"},
	{Symbol: "NFLX", Name: "Netflix Inc.", Price: 605.80, Change: 9.45, ChangePercent: 1.58, Volume: 4500000, MarketCap: 262000000000, Sector: "Communication", Exchange: "NASDAQ"},
	{Symbol: "T", Name: "AT&T Inc.", Price: 17.25, Change: 0.15, ChangePercent: 0.88, Volume: 32000000, MarketCap: 123000000000, Sector: "Communication", Exchange: "NYSE"},
	{Symbol: "VZ", Name: "Verizon Communications", Price: 40.85, Change: 0.35, ChangePercent: 0.86, Volume: 18000000, MarketCap: 172000000000, Sector: "Communication", Exchange: "NYSE"},
	{Symbol: "CMCSA", Name: "Comcast Corporation", Price: 42.50, Change: 0.55, ChangePercent: 1.31, Volume: 22000000, MarketCap: 168000000000, Sector: "Communication", Exchange: "NASDAQ"},
}
