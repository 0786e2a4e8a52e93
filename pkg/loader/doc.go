// Package loader reads form and screen definitions from JSON or YAML
// documents. A document carries a `forms:` map and/or a `screens:` map keyed
// by id:
//
//	forms:
//	  createQuiz:
//	    title: New quiz
//	    fields:
//	      - key: name
//	        type: text
//	        required: true
//	screens:
//	  quizzes:
//	    components:
//	      - id: list
//	        type: table
//
// Map keys become the definition ids when the body omits one. Ids must be
// unique across every file of the filesystem.
package loader
