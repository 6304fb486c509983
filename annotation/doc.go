// Package annotation maps overlay highlights to persisted annotation
// records and manages the .paj sidecar file that stores them.
//
// A sidecar sits next to its PDF ("report.pdf" → "report.paj") and holds
// the PDF's base name and the list of records:
//
//	{
//	  "pdf-file": "report.pdf",
//	  "annotations": [
//	    {
//	      "page": 1,
//	      "start-node": 0,
//	      "start-offset": 0,
//	      "end-node": 0,
//	      "end-offset": 3,
//	      "text": "Top",
//	      "content": "a *note*"
//	    }
//	  ]
//	}
//
// [Replay] re-applies the records of a page to a freshly materialized
// overlay. Records that no longer match the text layer are skipped and
// reported rather than aborting the replay.
package annotation
