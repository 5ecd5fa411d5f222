package help

const ColdstartYAML = `# procurement-nlq Quick Start

pipeline_stages:
  profile: "Inspect a CSV before loading (no database needed)"
  load: "Drop and reload MongoDB from the CSV"
  prompts: "Generate natural-language questions with GPT-4o"
  translate: "Turn questions into validated queries with Claude"
  format: "Build fine-tuning JSONL from validated queries"
  analyze: "Token stats and cost estimate for a JSONL file"
  finetune: "Upload data and run an OpenAI fine-tuning job"
  evaluate: "Score the fine-tuned model against test questions"

commands:
  profile_csv: |
    procurement-nlq profile --csv purchase-order-data.csv

  load_data: |
    procurement-nlq load --csv purchase-order-data.csv

  generate_questions: |
    procurement-nlq prompts --count 100 --split 0.8

  translate_questions: |
    procurement-nlq translate --questions query_prompts/prompts_20260825_120000_train.txt

  full_pipeline: |
    # Step 1: Load the data
    procurement-nlq load --csv purchase-order-data.csv

    # Step 2: Generate and split questions
    procurement-nlq prompts --count 200 --split 0.8

    # Step 3: Translate the training questions (writes successful_queries_*.json)
    procurement-nlq translate --questions query_prompts/prompts_<ts>_train.txt

    # Step 4: Format, inspect, and fine-tune
    procurement-nlq format --input successful_queries_<ts>.json
    procurement-nlq analyze --input successful_queries_<ts>_train.jsonl
    procurement-nlq finetune --train successful_queries_<ts>_train.jsonl --validation successful_queries_<ts>_validation.jsonl

    # Step 5: When the job finishes, evaluate
    procurement-nlq finetune --job ftjob-abc123
    export MODEL_NAME=ft:gpt-4o-mini:...
    procurement-nlq evaluate --questions query_prompts/prompts_<ts>_test.txt

environment:
  - "MONGODB_USERNAME, MONGODB_PASSWORD, MONGODB_CLUSTER_URL (Atlas connection)"
  - "ANTHROPIC_API_KEY (translate, evaluate scoring)"
  - "OPENAI_API_KEY (prompts, finetune, evaluate)"
  - "MODEL_NAME (fine-tuned model for evaluate)"
  - "Values load from .env automatically when present"

key_files:
  - "query_prompts/prompts_<ts>_train.txt (questions for translation)"
  - "successful_queries_<ts>.json (validated question/query pairs)"
  - "error_log_<ts>.json (only created if translations failed)"
  - "generated_queries/query_<ts>_<n>.json (per-question evaluation artifacts)"
  - "evaluation_results/evaluation_results_<ts>.json (aggregate scores)"

run_tracking:
  - "Runs tracked in SQLite next to the binary"
  - "Auto-incrementing run IDs (1, 2, 3...)"
  - "Use 'procurement-nlq runs list' to list all runs"
  - "Use 'procurement-nlq runs show <id>' for per-question details"
  - "Use 'procurement-nlq runs show <id> --failed-only' to see what to retry"

query_format:
  find: '{"department_name": "Department of Water Resources"}'
  aggregate: '{"aggregate": true, "pipeline": [{"$group": {"_id": "$department_name"}}]}'
  notes:
    - "Field names are snake_case; camelCase from the model is normalized automatically"
    - "Bare pipeline arrays are wrapped into aggregate format"
    - "Every translated query is executed before it is accepted"

error_behavior:
  - "Missing env vars: fail fast before any API call"
  - "Per-question errors: logged to error_log_<ts>.json, batch continues"
  - "Exit codes: 0=success, 1=partial failure, 2=complete failure"
`
