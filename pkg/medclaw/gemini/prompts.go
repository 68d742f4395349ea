// prompts.go holds the domain prompt templates. These are plain string
// builders: all control flow (scheduling, validation, fallback) stays in the
// service and in callers.
package gemini

import (
	"fmt"
	"strings"
)

// SimplificationLevel is the target reading difficulty for document
// simplification.
type SimplificationLevel string

const (
	LevelBasic        SimplificationLevel = "basic"        // 8th grade
	LevelIntermediate SimplificationLevel = "intermediate" // 6th grade
	LevelSimple       SimplificationLevel = "simple"       // 4th grade
)

// ReadingLevel returns the human-readable description of the level.
func (l SimplificationLevel) ReadingLevel() string {
	switch l {
	case LevelBasic:
		return "8th Grade Level"
	case LevelSimple:
		return "4th Grade Level"
	default:
		return "6th Grade Level"
	}
}

func (l SimplificationLevel) instructions() string {
	switch l {
	case LevelBasic:
		return "Use an 8th grade reading level with some medical terms explained."
	case LevelSimple:
		return "Use a 4th grade reading level with simple words and short sentences."
	default:
		return "Use a 6th grade reading level with clear explanations of medical terms."
	}
}

// DocumentType identifies the kind of medical document being simplified.
// Each type gets its own prompt preamble.
type DocumentType string

const (
	DocLabResults             DocumentType = "lab_results"
	DocDischargeSummary       DocumentType = "discharge_summary"
	DocMedicationInstructions DocumentType = "medication_instructions"
	DocRadiologyReport        DocumentType = "radiology_report"
	DocPathologyReport        DocumentType = "pathology_report"
	DocConsultationNote       DocumentType = "consultation_note"
	DocGeneralMedical         DocumentType = "general_medical"
)

// documentPreambles are the per-type system framings for simplification.
var documentPreambles = map[DocumentType]string{
	DocLabResults: "You are a medical communication expert specializing in simplifying " +
		"laboratory results for patients. Make lab results understandable while maintaining " +
		"accuracy and helping patients understand what their results mean for their health.",
	DocDischargeSummary: "You are a medical communication expert specializing in simplifying " +
		"hospital discharge summaries. Help patients understand their hospital stay, the " +
		"treatment received, and what they need to do after leaving the hospital.",
	DocMedicationInstructions: "You are a medical communication expert specializing in " +
		"simplifying medication instructions. Make medication directions clear and easy to " +
		"follow, ensuring patient safety and medication adherence.",
	DocRadiologyReport: "You are a medical communication expert specializing in simplifying " +
		"radiology and imaging reports. Help patients understand what imaging tests were done " +
		"and what the results show about their health.",
	DocPathologyReport: "You are a medical communication expert specializing in simplifying " +
		"pathology reports. Explain biopsy and tissue examination results in a way patients " +
		"can understand, while being sensitive to potentially concerning findings.",
	DocConsultationNote: "You are a medical communication expert specializing in simplifying " +
		"specialist consultation notes. Help patients understand what the specialist found " +
		"and what treatment plan was recommended.",
	DocGeneralMedical: "You are a medical communication expert specializing in simplifying " +
		"medical documents for patients. Make complex medical information accessible and " +
		"understandable while maintaining accuracy and completeness.",
}

// PatientContext carries optional reader information that tunes the
// simplification prompt.
type PatientContext struct {
	Age            int
	EducationLevel string
}

// simplificationPrompt builds the full document-simplification prompt.
func simplificationPrompt(text string, docType DocumentType, level SimplificationLevel, patient *PatientContext) string {
	preamble, ok := documentPreambles[docType]
	if !ok {
		preamble = documentPreambles[DocGeneralMedical]
	}

	contextInfo := "General patient population."
	if patient != nil {
		var parts []string
		if patient.Age > 0 {
			parts = append(parts, fmt.Sprintf("Patient age: %d.", patient.Age))
		}
		if patient.EducationLevel != "" {
			parts = append(parts, fmt.Sprintf("Education level: %s.", patient.EducationLevel))
		}
		if len(parts) > 0 {
			contextInfo = strings.Join(parts, " ")
		}
	}

	return fmt.Sprintf(`%s

READING LEVEL REQUIREMENT: %s

PATIENT CONTEXT: %s

ORIGINAL MEDICAL DOCUMENT:
%s

SIMPLIFIED VERSION:
Provide a simplified version that keeps all important medical information while making it easier to understand. Focus on:
1. Replacing complex medical terms with simpler alternatives
2. Adding brief explanations for necessary medical terminology
3. Breaking down complex sentences into shorter, clearer ones
4. Organizing information in a logical, easy-to-follow structure
5. Maintaining accuracy of all medical facts and instructions`,
		preamble, level.instructions(), contextInfo, text)
}

// interactionPrompt asks the model to explain potential interactions between
// a list of medications in plain language.
func interactionPrompt(medications []string) string {
	return fmt.Sprintf(`You are a clinical pharmacist assistant. A patient is taking the following medications:

%s

Explain, in plain language a patient can understand:
1. Any known interactions between these medications and how serious each one is
2. Symptoms the patient should watch for
3. Whether any combination requires talking to a doctor or pharmacist before continuing

If there are no known interactions, say so clearly. Do not invent interactions.`,
		"- "+strings.Join(medications, "\n- "))
}

// medicationTextPrompt asks the model to extract structured medication
// details from free text, e.g. OCR output from a label photo.
func medicationTextPrompt(text string) string {
	return fmt.Sprintf(`You are a pharmacy technician assistant. The following text was read from a medication label or prescription:

%s

Extract the following fields, one per line, using "unknown" when a field is not present:
Name: <medication name>
Dosage: <strength with unit, e.g. 10 mg>
Frequency: <how often to take it>
Prescriber: <prescribing doctor, if shown>
Quantity: <number of pills/units, if shown>
Instructions: <any usage instructions in plain language>`, text)
}

// imageAnalysisPrompt is the default prompt for label photos when the caller
// does not provide one.
const imageAnalysisPrompt = "This is a photo of a medication label or package. " +
	"Read all visible text and describe the medication name, strength, dosage " +
	"instructions and any warnings you can see."
