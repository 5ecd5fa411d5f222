// Package schema is the single source of truth for the procurement dataset:
// database and collection names, index fields, the canonical field list used in
// LLM prompts, and the alternate-name table consumed by the query normalizer.
package schema

// Database and collection the pipeline reads and writes.
const (
	DatabaseName   = "procurement_db"
	CollectionName = "procurement_data"
)

// IndexFields are created after a CSV load to keep the common query patterns fast.
var IndexFields = []string{
	"creation_date",
	"department_name",
	"supplier_name",
	"acquisition_type",
}

// FieldAliases maps known non-canonical spellings to the canonical snake_case
// field names. Model output drifts into camelCase even when the prompt insists
// on snake_case; this table covers every schema field with a multi-word name.
var FieldAliases = map[string]string{
	// Date fields
	"creationDate": "creation_date",
	"purchaseDate": "purchase_date",
	"fiscalYear":   "fiscal_year",

	// Reference numbers
	"lpaNumber":           "lpa_number",
	"purchaseOrderNumber": "purchase_order_number",
	"requisitionNumber":   "requisition_number",

	// Acquisition info
	"acquisitionType":      "acquisition_type",
	"subAcquisitionType":   "sub_acquisition_type",
	"acquisitionMethod":    "acquisition_method",
	"subAcquisitionMethod": "sub_acquisition_method",

	// Organization info
	"departmentName": "department_name",

	// Supplier info
	"supplierCode":           "supplier_code",
	"supplierName":           "supplier_name",
	"supplierQualifications": "supplier_qualifications",
	"supplierZipCode":        "supplier_zip_code",

	// Item details
	"itemName":        "item_name",
	"itemDescription": "item_description",
	"unitPrice":       "unit_price",
	"totalPrice":      "total_price",

	// Classification
	"classificationCodes": "classification_codes",
	"normalizedUnspsc":    "normalized_unspsc",
	"commodityTitle":      "commodity_title",
	"classTitle":          "class_title",
	"familyTitle":         "family_title",
	"segmentTitle":        "segment_title",
}

// FieldReference is the field list shared by every prompt that describes the
// collection to a model.
const FieldReference = `The database has a single collection named 'procurement_data' with the following fields:

Date Fields:
- creation_date (datetime)
- purchase_date (datetime)
- fiscal_year

Reference Numbers:
- lpa_number
- purchase_order_number
- requisition_number

Acquisition Info:
- acquisition_type
- sub_acquisition_type
- acquisition_method
- sub_acquisition_method

Organization Info:
- department_name
- location

Supplier Info:
- supplier_code (integer)
- supplier_name
- supplier_qualifications
- supplier_zip_code
- calcard

Item Details:
- item_name
- item_description
- quantity (float)
- unit_price (float)
- total_price (float)

Classification:
- classification_codes (array of strings)
- normalized_unspsc
- commodity_title
- class
- class_title
- family
- family_title
- segment
- segment_title`

// TranslatorSystemPrompt instructs Claude to emit raw JSON queries for the
// procurement collection.
const TranslatorSystemPrompt = `You are a MongoDB query generator. You create valid MongoDB queries based on natural language questions about a procurement database.

DATABASE DETAILS:
` + FieldReference + `

QUERY RUNNER REQUIREMENTS:
1. Queries must be valid JSON
2. For aggregation pipelines, use format:
{
    "aggregate": true,
    "pipeline": [
    // pipeline stages here
    ]
}
3. For find queries, use format:
{
    // find query here
}
4. Use double quotes for all strings
5. No trailing commas
6. No single quotes

YOUR TASK:
1. Analyze the natural language question
2. Create a MongoDB query that answers the question
3. Return only the JSON query, properly formatted
4. Do not include any explanations or text outside the JSON
5. Ensure all field names match the snake_case format from the database`

// TranslatorExamples are the few-shot examples sent alongside each question.
const TranslatorExamples = `Here are some examples of questions and their corresponding queries:

Question: "What departments spent more than $10,000 on IT supplies in 2023?"
{
"aggregate": true,
"pipeline": [
    {
    "$match": {
        "fiscal_year": "2023",
        "item_description": {"$regex": "IT", "$options": "i"},
        "total_price": {"$gt": 10000}
    }
    },
    {
    "$group": {
        "_id": "$department_name",
        "total_spent": {"$sum": "$total_price"}
    }
    }
]
}

Question: "Who are our top 5 suppliers by total purchase amount?"
{
"aggregate": true,
"pipeline": [
    {
    "$group": {
        "_id": "$supplier_name",
        "total_purchases": {"$sum": "$total_price"}
    }
    },
    {
    "$sort": {"total_purchases": -1}
    },
    {
    "$limit": 5
    }
]
}`

// PromptGenContext describes the dataset to the question-generating model.
// Known values keep the generated questions answerable against real data.
const PromptGenContext = `MongoDB Database Schema for Procurement Data:
- Fields:
    - Dates: creation_date, purchase_date
    - Amounts: unit_price, total_price, quantity
    - Categories: acquisition_type, sub_acquisition_type, acquisition_method, sub_acquisition_method
    - Organization: department_name, location
    - Supplier: supplier_code, supplier_name, supplier_qualifications, supplier_zip_code, calcard
    - Item: item_name, item_description
    - Classification: classification_codes, normalized_unspsc, commodity_title, class, class_title, family, family_title, segment, segment_title
    - Reference: lpa_number, purchase_order_number, requisition_number
    - Temporal: fiscal_year

Known Values:
- Acquisition Types: NON-IT Goods, NON-IT Services, IT Goods, IT Services, IT Telecommunications
- Fiscal Years: 2012-2013, 2013-2014, 2014-2015
- Major Departments: Corrections and Rehabilitation, Water Resources, Correctional Health Care Services

Generate natural language queries that can be translated to MongoDB queries. Focus on:
1. Aggregation queries (grouping, counting, averaging)
2. Find queries (filtering, matching)
3. Complex queries (multiple operations, joins, comparisons)`

// EvalSystemPrompt instructs the fine-tuned model during evaluation runs.
const EvalSystemPrompt = `You are a MongoDB query generator. Generate valid MongoDB queries based on natural language questions about a procurement database. Return only the JSON query without explanations. Use snake_case for all field names. Handle aggregations with {"aggregate": true, "pipeline": [...]} format and find queries as simple JSON objects.`

// TrainingSystemPrompt is the system message baked into every fine-tuning example.
const TrainingSystemPrompt = `You are an assistant that converts natural language questions into MongoDB queries. Ensure the query is properly formatted and uses the correct MongoDB operators. Return only the query without any explanations.`
