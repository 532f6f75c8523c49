package formulas

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CorrelationMatrixFromCovariance converts a covariance matrix into a
// correlation matrix: rho_ij = cov_ij / sqrt(var_i * var_j). Entries backed
// by a zero-variance asset are set to 0 (1 on the diagonal).
func CorrelationMatrixFromCovariance(cov [][]float64) ([][]float64, error) {
	n := len(cov)
	if n == 0 {
		return nil, fmt.Errorf("empty covariance matrix")
	}
	for i := range cov {
		if len(cov[i]) != n {
			return nil, fmt.Errorf("covariance matrix is not square: row %d has %d columns, expected %d", i, len(cov[i]), n)
		}
	}

	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		corr[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			denom := math.Sqrt(cov[i][i] * cov[j][j])
			var rho float64
			if denom > 0 {
				rho = cov[i][j] / denom
			}
			if math.IsNaN(rho) || math.IsInf(rho, 0) {
				rho = 0
			}
			corr[i][j] = rho
			corr[j][i] = rho
		}
	}

	return corr, nil
}

// NearestPSD regularizes a symmetric matrix to be positive semi-definite by
// flooring its eigenvalues at minEigenvalue and reconstructing. Asymmetric
// input is symmetrized first. An empirical correlation matrix estimated from
// few observations can carry small negative eigenvalues that break quadratic
// optimizers; the floor guarantees a usable matrix.
func NearestPSD(m [][]float64, minEigenvalue float64) ([][]float64, error) {
	n := len(m)
	if n == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	for i := range m {
		if len(m[i]) != n {
			return nil, fmt.Errorf("matrix is not square: row %d has %d columns, expected %d", i, len(m[i]), n)
		}
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, (m[i][j]+m[j][i])/2)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("eigen decomposition failed")
	}

	vals := eig.Values(nil)
	for i := range vals {
		if vals[i] < minEigenvalue {
			vals[i] = minEigenvalue
		}
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Reconstruct V * diag(vals) * V^T, symmetrizing against rounding drift.
	result := make([][]float64, n)
	for i := range result {
		result[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += vecs.At(i, k) * vals[k] * vecs.At(j, k)
			}
			result[i][j] = sum
			result[j][i] = sum
		}
	}

	return result, nil
}
