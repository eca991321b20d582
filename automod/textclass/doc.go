// Pure predicates over comment text, author names, and mail addresses.
//
// Everything in this package is stateless and safe for concurrent use. Lengths and ratios are computed over Unicode code points. Script checks for "Chinese" only consider the CJK Unified Ideographs block U+4E00 to U+9FA5.
package textclass
