// Package repet separates a music mixture into its repeating background and
// non-repeating foreground using the REpeating Pattern Extraction Technique
// (REPET).
//
// The method detects periodicity in the mixture's time-frequency
// representation: a beat spectrum is derived from the power spectrogram by
// row-wise autocorrelation, the dominant repeating period is picked from it,
// and a soft mask is built by median-aggregating the magnitude spectrogram
// across repeating segments. It is fully unsupervised; no training data or
// model is involved.
//
// References:
//   - Rafii, Z., Pardo, B. (2013). "REpeating Pattern Extraction Technique
//     (REPET): A Simple Method for Music/Voice Separation"
//     IEEE Transactions on Audio, Speech, and Language Processing, 21(1)
//   - Rafii, Z., Pardo, B. (2011). "A Simple Music/Voice Separation Method
//     based on the Extraction of the Repeating Musical Structure"
//     36th International Conference on Acoustics, Speech and Signal Processing
package repet
