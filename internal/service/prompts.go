package service

// extractionSystemPrompt pins the extraction contract: only stated facts,
// null over guess, valid JSON.
const extractionSystemPrompt = `You are a financial analyst AI assistant specialized in extracting structured data from SEC filings.

CRITICAL RULES:
1. Extract ONLY information explicitly stated in the provided text
2. Use null for any values not found - NEVER guess or estimate
3. All monetary values must be in USD
4. Flag any ambiguous values with low confidence
5. Distinguish between fiscal year and calendar year dates

Your output must be valid JSON matching the provided schema exactly.`

// financialExtractionPromptFormat takes filing type, ticker, company name,
// filing date, fiscal year and the context block.
const financialExtractionPromptFormat = `Extract financial data from this %s filing for %s (%s).
Filing date: %s
Fiscal year: %d

<context>
%s
</context>

Extract the following information into a JSON object with this structure:

{
  "financial_metrics": {
    "revenue": <number or null>,
    "cost_of_revenue": <number or null>,
    "gross_profit": <number or null>,
    "operating_expenses": <number or null>,
    "operating_income": <number or null>,
    "net_income": <number or null>,
    "eps_basic": <number or null>,
    "eps_diluted": <number or null>,
    "total_assets": <number or null>,
    "total_liabilities": <number or null>,
    "total_equity": <number or null>,
    "cash_and_equivalents": <number or null>,
    "total_debt": <number or null>,
    "operating_cash_flow": <number or null>,
    "investing_cash_flow": <number or null>,
    "financing_cash_flow": <number or null>,
    "capital_expenditures": <number or null>,
    "free_cash_flow": <number or null>
  },
  "business_summary": "<2-3 sentence summary of the business>",
  "confidence_score": <0.0 to 1.0>
}

IMPORTANT:
- Convert all values to raw USD (not thousands/millions/billions)
- If a table shows "(in millions)", multiply values by 1,000,000
- Return null for any value you cannot find with certainty
- The confidence_score reflects your overall confidence in the extraction

Respond with ONLY the JSON object, no explanation or markdown.`

// riskExtractionPromptFormat takes the Item 1A context block.
const riskExtractionPromptFormat = `Extract risk factors from this SEC filing's Item 1A section.

<context>
%s
</context>

Extract each risk factor as a JSON object in this array format:

{
  "risk_factors": [
    {
      "category": "<market|operational|regulatory|financial|legal|cybersecurity|competitive|macroeconomic|other>",
      "title": "<brief risk title, 1 sentence>",
      "description": "<key points from the risk description, 2-3 sentences>",
      "severity": "<low|medium|high|critical>",
      "is_new": false
    }
  ]
}

Guidelines:
- Category should be one of: market, operational, regulatory, financial, legal, cybersecurity, competitive, macroeconomic, other
- Severity assessment based on language intensity and potential impact
- Extract the top 10-15 most significant risks
- Keep descriptions concise but informative

Respond with ONLY the JSON object.`

// retrySuffixFormat appends the previous parse failure so the model can
// correct its output on the second attempt.
const retrySuffixFormat = "\n\nPrevious attempt failed with error: %v. Please fix and try again."
