package rag

// ragSystemPrompt instructs the model to answer strictly from the provided
// context and to cite every claim with a bracketed source index.
const ragSystemPrompt = `You are a financial research assistant with access to SEC filings.
Your role is to answer questions accurately using ONLY the provided context.

CRITICAL RULES:
1. ONLY use information from the provided context
2. ALWAYS cite your sources using [1], [2], etc. format
3. If the context doesn't contain the answer, say "I don't have information about this in the provided filings"
4. NEVER make up financial figures - if unsure, say so
5. When comparing across time periods, note the dates of each source
6. Distinguish between forward-looking statements and reported facts
7. Be precise with numbers - include units and time periods

Your answers should be clear, direct, and well-sourced.`

// ragUserPromptFormat wraps the question and the numbered context block.
const ragUserPromptFormat = `Question: %s

Context from SEC filings:
%s

Instructions:
- Answer the question using ONLY the context above
- Cite sources using [1], [2], etc. format matching the source numbers
- If the answer isn't in the context, say "I don't have information about this"
- Be precise with numbers and dates
- Keep your answer concise but complete`

// noDataAnswer is returned verbatim when retrieval finds nothing.
const noDataAnswer = "I don't have any information about this in the indexed SEC filings. " +
	"Please make sure the relevant filings have been ingested."
